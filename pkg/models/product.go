package models

import (
	"math"
	"time"
)

const (
	SourceAmazon   = "amazon"
	SourceFlipkart = "flipkart"
)

// Product is a single scraped observation of a product page.
// OriginalPrice is the struck-through MRP; zero means the page showed none.
// It is only ever set when strictly greater than Price.
type Product struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	InStock       bool      `json:"in_stock"`
	Seller        string    `json:"seller,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	ScrapedAt     time.Time `json:"scraped_at"`
	Source        string    `json:"source"`
}

// DiscountPercent returns the discount off the MRP rounded to one decimal,
// or 0 when no valid MRP was observed.
func (p *Product) DiscountPercent() float64 {
	if p.OriginalPrice <= p.Price {
		return 0
	}
	return math.Round((1-p.Price/p.OriginalPrice)*1000) / 10
}
