package alerts

import (
	"testing"

	"itemwatch/pkg/models"
	"itemwatch/pkg/storage"

	"github.com/google/go-cmp/cmp"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		obs    *models.Product
		prev   *storage.PriceRecord
		target float64
		want   []Event
	}{
		{
			name: "first observation fires nothing without a target",
			obs:  &models.Product{Price: 999, InStock: true},
			prev: nil,
			want: nil,
		},
		{
			name:   "first observation can still reach a target",
			obs:    &models.Product{Price: 999, InStock: true},
			prev:   nil,
			target: 1000,
			want:   []Event{TargetReached},
		},
		{
			name: "price drop",
			obs:  &models.Product{Price: 899, InStock: true},
			prev: &storage.PriceRecord{Price: 999, InStock: true},
			want: []Event{PriceDrop},
		},
		{
			name: "unchanged price is not a drop",
			obs:  &models.Product{Price: 999, InStock: true},
			prev: &storage.PriceRecord{Price: 999, InStock: true},
			want: nil,
		},
		{
			name: "price increase fires nothing",
			obs:  &models.Product{Price: 1099, InStock: true},
			prev: &storage.PriceRecord{Price: 999, InStock: true},
			want: nil,
		},
		{
			name: "restock on out-to-in transition",
			obs:  &models.Product{Price: 999, InStock: true},
			prev: &storage.PriceRecord{Price: 999, InStock: false},
			want: []Event{Restock},
		},
		{
			name: "staying in stock is not a restock",
			obs:  &models.Product{Price: 999, InStock: true},
			prev: &storage.PriceRecord{Price: 999, InStock: true},
			want: nil,
		},
		{
			name: "going out of stock fires nothing",
			obs:  &models.Product{Price: 999, InStock: false},
			prev: &storage.PriceRecord{Price: 999, InStock: true},
			want: nil,
		},
		{
			name:   "target fires again even when price is unchanged",
			obs:    &models.Product{Price: 899, InStock: true},
			prev:   &storage.PriceRecord{Price: 899, InStock: true},
			target: 900,
			want:   []Event{TargetReached},
		},
		{
			name:   "target exactly met counts",
			obs:    &models.Product{Price: 900, InStock: true},
			prev:   &storage.PriceRecord{Price: 950, InStock: true},
			target: 900,
			want:   []Event{PriceDrop, TargetReached},
		},
		{
			name:   "zero target means no target",
			obs:    &models.Product{Price: 1, InStock: true},
			prev:   &storage.PriceRecord{Price: 1, InStock: true},
			target: 0,
			want:   nil,
		},
		{
			name:   "drop restock and target can all fire together",
			obs:    &models.Product{Price: 799, InStock: true},
			prev:   &storage.PriceRecord{Price: 999, InStock: false},
			target: 800,
			want:   []Event{PriceDrop, Restock, TargetReached},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.obs, tt.prev, tt.target)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Detect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
