package scrapers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one attempt at resolving a field from the page: a candidate
// value, or no value. Page markup is volatile, so every field is resolved by
// an ordered list of these, first accepted candidate wins.
type Strategy func(doc *goquery.Document) (string, bool)

// Text reads the trimmed text of the first element matching selector.
func Text(selector string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return "", false
		}
		return text, true
	}
}

// Attr reads an attribute of the first element matching selector.
func Attr(selector, attr string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		val, ok := doc.Find(selector).First().Attr(attr)
		if !ok || strings.TrimSpace(val) == "" {
			return "", false
		}
		return strings.TrimSpace(val), true
	}
}

// First applies strategies in order and returns the first candidate.
func First(doc *goquery.Document, strategies []Strategy) (string, bool) {
	for _, strat := range strategies {
		if val, ok := strat(doc); ok {
			return val, true
		}
	}
	return "", false
}

// FirstPrice applies strategies in order and returns the first candidate
// that parses as a price. A candidate that fails to parse falls through to
// the next strategy rather than aborting.
func FirstPrice(doc *goquery.Document, strategies []Strategy) (float64, bool) {
	for _, strat := range strategies {
		text, ok := strat(doc)
		if !ok {
			continue
		}
		if val, ok := ParsePrice(text); ok {
			return val, true
		}
	}
	return 0, false
}
