package scrapers

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParsePrice extracts a non-negative amount from currency-formatted text
// like "₹1,299.00" or "1,299". It strips currency symbols, thousands
// separators and whitespace; anything non-numeric left over means no value,
// not an error — callers treat that as "candidate rejected, try the next
// strategy".
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '₹' || r == '€' || r == '$' || r == '£' || r == ',':
			return -1
		case unicode.IsSpace(r):
			return -1
		}
		return r
	}, text)

	if cleaned == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || val < 0 || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
