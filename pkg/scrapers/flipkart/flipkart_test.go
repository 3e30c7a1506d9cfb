package flipkart

import (
	"errors"
	"testing"

	"itemwatch/pkg/models"
)

const productPage = `
<!DOCTYPE html>
<html>
<head><title>Noise ColorFit Pro 4 Smartwatch - Buy Online | Flipkart.com</title></head>
<body>
	<h1>Noise ColorFit Pro 4 Smartwatch</h1>
	<div>
		<div><span>₹1,999</span></div>
		<div class="_3I9_wc"><span>₹4,999</span></div>
	</div>
	<div>Bank Offer: 10% off up to <span>₹1,000</span></div>
	<div id="sellerName"><span><span>SuperComNet</span></span></div>
	<img src="https://rukminim2.flixcart.com/image/416/416/watch.jpg">
</body>
</html>
`

func TestExtract(t *testing.T) {
	product, err := New().Extract("https://www.flipkart.com/noise-colorfit/p/itm123", productPage)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if product.Title != "Noise ColorFit Pro 4 Smartwatch" {
		t.Errorf("title = %q", product.Title)
	}
	if product.Price != 1999 {
		t.Errorf("price = %v, want 1999", product.Price)
	}
	if product.OriginalPrice != 4999 {
		t.Errorf("original price = %v, want 4999", product.OriginalPrice)
	}
	if !product.InStock {
		t.Error("expected in stock")
	}
	if product.Seller != "SuperComNet" {
		t.Errorf("seller = %q", product.Seller)
	}
	if product.ImageURL != "https://rukminim2.flixcart.com/image/416/416/watch.jpg" {
		t.Errorf("image = %q", product.ImageURL)
	}
	if product.Source != models.SourceFlipkart {
		t.Errorf("source = %q", product.Source)
	}
}

func TestExtractOfferContextBeforeSellingPrice(t *testing.T) {
	// The EMI quote appears before the real price in document order and
	// must not win.
	page := `
	<html><body>
		<h1>Phone</h1>
		<div>No cost EMI starts at <span>₹2,084</span></div>
		<div><span>₹24,999</span></div>
	</body></html>`

	product, err := New().Extract("https://www.flipkart.com/phone/p/itm1", page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if product.Price != 24999 {
		t.Errorf("price = %v, want 24999", product.Price)
	}
}

func TestExtractStruckPriceNotAboveSellingDiscarded(t *testing.T) {
	page := `
	<html><body>
		<h1>Phone</h1>
		<div><span>₹1,999</span></div>
		<div class="_3I9_wc"><span>₹1,999</span></div>
	</body></html>`

	product, err := New().Extract("https://www.flipkart.com/phone/p/itm1", page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if product.OriginalPrice != 0 {
		t.Errorf("original price = %v, want 0 (discarded)", product.OriginalPrice)
	}
}

func TestExtractLegacySelectors(t *testing.T) {
	page := `
	<html><body>
		<div class="B_NuCI">Legacy Render Phone</div>
		<div class="_30jeq3">₹12,499</div>
		<div class="_3I9_wc">₹15,999</div>
	</body></html>`

	product, err := New().Extract("https://www.flipkart.com/phone/p/itm1", page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if product.Title != "Legacy Render Phone" {
		t.Errorf("title = %q", product.Title)
	}
	if product.Price != 12499 {
		t.Errorf("price = %v, want 12499", product.Price)
	}
	if product.OriginalPrice != 15999 {
		t.Errorf("original price = %v, want 15999", product.OriginalPrice)
	}
}

func TestExtractTitleFromPageTitle(t *testing.T) {
	page := `
	<html><head><title>Mixer Grinder - Buy at Best Price | Flipkart.com</title></head>
	<body><div><span>₹2,199</span></div></body></html>`

	product, err := New().Extract("https://www.flipkart.com/mixer/p/itm1", page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if product.Title != "Mixer Grinder" {
		t.Errorf("title = %q, want %q", product.Title, "Mixer Grinder")
	}
}

func TestExtractOutOfStock(t *testing.T) {
	page := `
	<html><body>
		<h1>Phone</h1>
		<div><span>₹24,999</span></div>
		<div>This item is currently out of stock</div>
	</body></html>`

	product, err := New().Extract("https://www.flipkart.com/phone/p/itm1", page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if product.InStock {
		t.Error("expected out of stock")
	}
}

func TestExtractNoPrice(t *testing.T) {
	page := `<html><body><h1>Phone</h1><div>Notify me</div></body></html>`

	_, err := New().Extract("https://www.flipkart.com/phone/p/itm1", page)
	var extractErr *models.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *models.ExtractionError, got %T: %v", err, err)
	}
}

func TestRecognizes(t *testing.T) {
	s := New()
	for url, want := range map[string]bool{
		"https://www.flipkart.com/phone/p/itm1": true,
		"https://flipkart.com/phone/p/itm1":     true,
		"https://www.amazon.in/dp/B0TEST":       false,
		"https://dl.flipkart.com/dl/x":          false,
	} {
		if got := s.Recognizes(url); got != want {
			t.Errorf("Recognizes(%q) = %v, want %v", url, got, want)
		}
	}
}
