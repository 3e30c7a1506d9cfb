package flipkart

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"itemwatch/pkg/models"
	"itemwatch/pkg/render"
	"itemwatch/pkg/scrapers"

	"github.com/PuerkitoBio/goquery"
)

const Source = models.SourceFlipkart

var supportedHosts = map[string]bool{
	"flipkart.com":     true,
	"www.flipkart.com": true,
}

// Flipkart ships obfuscated class names that rotate between deployments.
// The legacy classes below still appear on cached/older renderings; the
// structural rupee-token scan is the primary strategy.
var (
	legacyPriceSelectors = []string{`._30jeq3`, `.Nx9bqj`, `._1_WHN1`, `div._16Jk6d`}
	legacyMRPSelectors   = []string{`._3I9_wc`, `.yRaY8j`, `._2p6lqe`}

	// Known struck-through MRP classes across markup generations.
	strikeClasses = `._3I9_wc, .yRaY8j, ._2p6lqe`

	titleSuffixRe = regexp.MustCompile(`(?i)\s*[-|].*Flipkart.*$`)

	// Login popup close button.
	dismissSelectors = []string{`button._2KpZ6l._2doB4z`, `button._2KpZ6l`}
)

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
		WaitSelector: "h1",
		Dismiss:      dismissSelectors,
		Settle:       4 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return s.Extract(rawURL, html)
}

func (s *Scraper) Extract(rawURL, html string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &models.ExtractionError{URL: rawURL, Reason: "unparseable page: " + err.Error()}
	}

	price, mrp := s.extractPrices(doc)
	if price == 0 {
		return nil, &models.ExtractionError{URL: rawURL, Reason: "no price found"}
	}
	// A struck-through amount at or below the selling price is not an MRP.
	if mrp <= price {
		mrp = 0
	}

	product := &models.Product{
		URL:           rawURL,
		Title:         s.extractTitle(doc),
		Price:         price,
		Currency:      "INR",
		OriginalPrice: mrp,
		InStock:       !scrapers.PageSaysUnavailable(doc.Find("body").Text()),
		ScrapedAt:     time.Now(),
		Source:        Source,
	}

	if seller, ok := scrapers.First(doc, []scrapers.Strategy{
		scrapers.Text("#sellerName span span"),
		scrapers.Text("._1RLviY"),
	}); ok {
		product.Seller = seller
	}

	product.ImageURL = s.extractImage(doc)

	return product, nil
}

func (s *Scraper) extractTitle(doc *goquery.Document) string {
	if title, ok := scrapers.First(doc, []scrapers.Strategy{
		scrapers.Text("h1"),
		scrapers.Text(".B_NuCI"),
		scrapers.Text("._35KyD6"),
	}); ok {
		return title
	}
	if raw := strings.TrimSpace(doc.Find("title").First().Text()); raw != "" {
		if cleaned := strings.TrimSpace(titleSuffixRe.ReplaceAllString(raw, "")); cleaned != "" {
			return cleaned
		}
	}
	return "Unknown Product"
}

// extractPrices scans every bare rupee amount in document order.
// Struck-through amounts are collected as MRP candidates; amounts inside
// offer/EMI/exchange contexts are dropped; the first survivor is the
// selling price. Legacy selectors and the raw scan only run when the
// structural pass finds nothing.
func (s *Scraper) extractPrices(doc *goquery.Document) (price, mrp float64) {
	doc.Find("div, span").Each(func(_ int, sel *goquery.Selection) {
		text := scrapers.DirectText(sel)
		val, ok := scrapers.ParsePrice(text)
		if !ok || !strings.HasPrefix(text, "₹") {
			return
		}

		if s.isStruck(sel) {
			if mrp == 0 {
				mrp = val
			}
			return
		}
		if scrapers.InOfferContext(sel) {
			return
		}
		if price == 0 {
			price = val
		}
	})

	if price == 0 {
		var strategies []scrapers.Strategy
		for _, selector := range legacyPriceSelectors {
			strategies = append(strategies, scrapers.Text(selector))
		}
		price, _ = scrapers.FirstPrice(doc, strategies)
	}
	if price == 0 {
		price, _ = scrapers.RawRupeeFallback(doc, strikeClasses)
	}

	if mrp == 0 {
		var strategies []scrapers.Strategy
		for _, selector := range legacyMRPSelectors {
			strategies = append(strategies, scrapers.Text(selector))
		}
		mrp, _ = scrapers.FirstPrice(doc, strategies)
	}
	return price, mrp
}

func (s *Scraper) isStruck(sel *goquery.Selection) bool {
	if sel.Closest(strikeClasses).Length() > 0 {
		return true
	}
	return scrapers.IsStruckThrough(sel)
}

func (s *Scraper) extractImage(doc *goquery.Document) string {
	var image string
	doc.Find(`img[src*="rukminim"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok {
			return true
		}
		if strings.Contains(src, "/image/") && !strings.Contains(src, "icon") {
			image = src
			return false
		}
		return true
	})
	return image
}
