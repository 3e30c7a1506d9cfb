package scrapers

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"symbol and separators", "₹1,299.00", 1299.00, true},
		{"bare thousands", "1,299", 1299, true},
		{"plain integer", "450", 450, true},
		{"leading whitespace", "  ₹ 2,499 ", 2499, true},
		{"euro symbol", "4.99 €", 4.99, true},
		{"zero", "0", 0, true},
		{"free text", "Free", 0, false},
		{"empty", "", 0, false},
		{"only symbol", "₹", 0, false},
		{"mixed residue", "₹499 off", 0, false},
		{"negative", "-450", 0, false},
		{"double dot", "1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
