package alerts

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"itemwatch/pkg/config"
)

func newStubNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	n := NewTelegramNotifier(config.TelegramConfig{BotToken: "test-token", ChatID: "12345"})
	n.client.SetBaseURL(server.URL)
	return n
}

func TestTelegramSendTargetAlert(t *testing.T) {
	var gotPath string
	var gotForm map[string]string
	n := newStubNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		gotForm = map[string]string{
			"chat_id":    r.PostFormValue("chat_id"),
			"text":       r.PostFormValue("text"),
			"parse_mode": r.PostFormValue("parse_mode"),
		}
		w.Write([]byte(`{"ok":true}`))
	})

	err := n.SendTargetAlert("Test <Product>", "https://www.flipkart.com/p/itm1", 899, 900)
	if err != nil {
		t.Fatalf("SendTargetAlert() error = %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("path = %q, want /bottest-token/sendMessage", gotPath)
	}
	if gotForm["chat_id"] != "12345" {
		t.Errorf("chat_id = %q, want 12345", gotForm["chat_id"])
	}
	if gotForm["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", gotForm["parse_mode"])
	}
	if !strings.Contains(gotForm["text"], "₹899.00") {
		t.Errorf("text missing current price: %q", gotForm["text"])
	}
	if !strings.Contains(gotForm["text"], "Test &lt;Product&gt;") {
		t.Errorf("title not HTML-escaped in %q", gotForm["text"])
	}
}

func TestTelegramAPIErrorSurfaces(t *testing.T) {
	n := newStubNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	})

	err := n.SendBackInStockAlert("Test Product", "https://www.amazon.in/dp/B0TEST", 499)
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q does not mention the status", err)
	}
}

func TestTelegramDailySummaryVariants(t *testing.T) {
	var texts []string
	n := newStubNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		texts = append(texts, r.PostFormValue("text"))
		w.Write([]byte(`{"ok":true}`))
	})

	if err := n.SendDailySummary(3, "", 0, 0); err != nil {
		t.Fatalf("plain summary error = %v", err)
	}
	if err := n.SendDailySummary(3, "Test Product", 949, 49); err != nil {
		t.Fatalf("closest-gap summary error = %v", err)
	}

	if len(texts) != 2 {
		t.Fatalf("got %d sends, want 2", len(texts))
	}
	if strings.Contains(texts[0], "Closest to target") {
		t.Errorf("plain summary should not name a product: %q", texts[0])
	}
	if !strings.Contains(texts[1], "Test Product") || !strings.Contains(texts[1], "₹49.00") {
		t.Errorf("closest-gap summary missing detail: %q", texts[1])
	}
}
