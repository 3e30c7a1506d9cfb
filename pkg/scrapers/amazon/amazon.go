package amazon

import (
	"context"
	"net/url"
	"strings"
	"time"

	"itemwatch/pkg/models"
	"itemwatch/pkg/render"
	"itemwatch/pkg/scrapers"

	"github.com/PuerkitoBio/goquery"
)

const Source = models.SourceAmazon

var supportedHosts = map[string]bool{
	"amazon.in":     true,
	"www.amazon.in": true,
}

// Selling-price locations, in order of reliability. Amazon keeps several
// generations of price markup alive at once and rotates which one a given
// page uses.
var priceSelectors = []string{
	`.a-price[data-a-color="price"] .a-offscreen`,
	`.a-price .a-offscreen`,
	`#corePrice_feature_div .a-offscreen`,
	`#corePriceDisplay_desktop_feature_div .a-offscreen`,
	`#priceblock_ourprice`,
	`#priceblock_dealprice`,
	`.a-price-whole`,
}

// MRP locations. A candidate is only kept when strictly greater than the
// selling price.
var mrpSelectors = []string{
	`.a-price[data-a-color="secondary"] .a-offscreen`,
	`.a-price[data-a-strike="true"] .a-offscreen`,
	`.a-text-price .a-offscreen`,
	`#priceblock_mrp`,
	`.basisPrice .a-offscreen`,
}

// Markup that marks an amount as the struck-through reference price rather
// than the amount charged.
const strikeContext = `.a-text-price, .a-price[data-a-strike="true"], .a-price[data-a-color="secondary"]`

type Scraper struct{}

func New() *Scraper {
	return &Scraper{}
}

func (s *Scraper) Recognizes(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return supportedHosts[parsed.Hostname()]
}

func (s *Scraper) Scrape(ctx context.Context, r render.Renderer, rawURL string) (*models.Product, error) {
	html, err := r.Fetch(ctx, render.Request{
		URL:          rawURL,
		WaitSelector: "#productTitle",
		Settle:       4 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return s.Extract(rawURL, html)
}

// Extract resolves the observation from rendered page HTML.
func (s *Scraper) Extract(rawURL, html string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &models.ExtractionError{URL: rawURL, Reason: "unparseable page: " + err.Error()}
	}

	price, ok := s.extractPrice(doc)
	if !ok {
		return nil, &models.ExtractionError{URL: rawURL, Reason: "no price found"}
	}

	title, ok := scrapers.First(doc, []scrapers.Strategy{
		scrapers.Text("#productTitle"),
	})
	if !ok {
		title = "Unknown Product"
	}

	product := &models.Product{
		URL:           rawURL,
		Title:         title,
		Price:         price,
		Currency:      "INR",
		OriginalPrice: s.extractMRP(doc, price),
		InStock:       s.extractStock(doc),
		ScrapedAt:     time.Now(),
		Source:        Source,
	}

	if seller, ok := scrapers.First(doc, []scrapers.Strategy{
		scrapers.Text("#sellerProfileTriggerId"),
		scrapers.Text("#merchant-info a"),
	}); ok {
		product.Seller = seller
	}

	if img, ok := scrapers.First(doc, []scrapers.Strategy{
		scrapers.Attr("#landingImage", "src"),
		scrapers.Attr("#landingImage", "data-old-hires"),
		scrapers.Attr("#imgBlkFront", "src"),
	}); ok {
		product.ImageURL = img
	}

	return product, nil
}

// extractPrice walks the selector list in order; within each selector the
// first match in document order that is neither struck through nor in an
// offer context wins. Falls back to a raw rupee-token scan last.
func (s *Scraper) extractPrice(doc *goquery.Document) (float64, bool) {
	for _, selector := range priceSelectors {
		var price float64
		var found bool
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if sel.Closest(strikeContext).Length() > 0 {
				return true
			}
			if scrapers.IsStruckThrough(sel) || scrapers.InOfferContext(sel) {
				return true
			}
			if val, ok := scrapers.ParsePrice(sel.Text()); ok {
				price, found = val, true
				return false
			}
			return true
		})
		if found {
			return price, true
		}
	}
	return scrapers.RawRupeeFallback(doc, strikeContext)
}

func (s *Scraper) extractMRP(doc *goquery.Document, price float64) float64 {
	for _, selector := range mrpSelectors {
		text, ok := scrapers.Text(selector)(doc)
		if !ok {
			continue
		}
		// Not strictly greater than the selling price means this is not
		// a real MRP; keep trying.
		if mrp, ok := scrapers.ParsePrice(text); ok && mrp > price {
			return mrp
		}
	}
	return 0
}

func (s *Scraper) extractStock(doc *goquery.Document) bool {
	availability := doc.Find("#availability").First()
	if availability.Length() == 0 {
		return true
	}
	return !scrapers.PageSaysUnavailable(availability.Text())
}
