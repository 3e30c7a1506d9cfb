// Package scrapers holds what the per-source extraction pipelines share:
// the Scraper contract, the ordered-strategy combinator and the candidate
// filters that decide whether a rupee amount on the page is the selling
// price or something else (MRP, EMI quote, exchange offer).
package scrapers

import (
	"context"
	"regexp"
	"strings"

	"itemwatch/pkg/models"
	"itemwatch/pkg/render"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Scraper is one source handler. Recognizes must be deterministic and
// side-effect-free; it is used both to validate user input and to pick the
// extraction strategy at check time.
type Scraper interface {
	Recognizes(rawURL string) bool
	Scrape(ctx context.Context, r render.Renderer, rawURL string) (*models.Product, error)
}

var (
	// Amounts in these textual contexts are quotes and reference prices,
	// never the selling price.
	offerContextRe = regexp.MustCompile(`(?i)bank offer|exchange|emi|lowest price|buy at`)

	// A bare rupee amount, e.g. "₹1,299" or "₹1,299.00".
	rupeeTokenRe = regexp.MustCompile(`^₹[\d,]+(?:\.\d{1,2})?$`)

	unavailableRe = regexp.MustCompile(`(?i)currently unavailable|out of stock|coming soon`)
)

// InOfferContext reports whether the element's parent text marks the amount
// as an offer/EMI/exchange/lowest-price figure.
func InOfferContext(sel *goquery.Selection) bool {
	parent := sel.Parent()
	if parent.Length() == 0 {
		return false
	}
	return offerContextRe.MatchString(parent.Text())
}

// IsStruckThrough reports whether the element renders struck through in
// static markup: a del/s/strike ancestor or an inline line-through style on
// the element or a near ancestor. Source-specific strike classes are the
// pipelines' business.
func IsStruckThrough(sel *goquery.Selection) bool {
	if sel.Closest("del, s, strike").Length() > 0 {
		return true
	}
	for probe, depth := sel, 0; probe.Length() > 0 && depth < 3; probe, depth = probe.Parent(), depth+1 {
		if style, ok := probe.Attr("style"); ok && strings.Contains(style, "line-through") {
			return true
		}
	}
	return false
}

// DirectText returns the element's own text nodes, excluding nested
// children. A price element holds the bare amount; wrappers around it hold
// lots of other text too.
func DirectText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		for _, n := range c.Nodes {
			if n.Type == html.TextNode {
				b.WriteString(strings.TrimSpace(n.Data))
			}
		}
	})
	return b.String()
}

// RawRupeeFallback is the last-resort price search: the first element in
// document order whose own text is a bare rupee amount, skipping
// struck-through and offer-context candidates. Pipelines must try this
// before declaring extraction failure. strikeContexts are extra selectors
// (source-specific strike classes) whose descendants are rejected too.
func RawRupeeFallback(doc *goquery.Document, strikeContexts ...string) (float64, bool) {
	var price float64
	var found bool
	doc.Find("div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := DirectText(sel)
		if !rupeeTokenRe.MatchString(text) {
			return true
		}
		if IsStruckThrough(sel) || InOfferContext(sel) {
			return true
		}
		for _, ctx := range strikeContexts {
			if sel.Closest(ctx).Length() > 0 {
				return true
			}
		}
		if val, ok := ParsePrice(text); ok {
			price, found = val, true
			return false
		}
		return true
	})
	return price, found
}

// PageSaysUnavailable reports whether the page text declares the product
// unavailable. Stock defaults to true otherwise.
func PageSaysUnavailable(text string) bool {
	return unavailableRe.MatchString(text)
}
