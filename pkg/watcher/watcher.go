// Package watcher runs the check loop: route a URL to its scraper, record
// the observation, classify changes, and hand alerts to the dispatcher.
package watcher

import (
	"context"
	"log"
	"time"

	"itemwatch/pkg/alerts"
	"itemwatch/pkg/logger"
	"itemwatch/pkg/models"
	"itemwatch/pkg/render"
	"itemwatch/pkg/scrapers"
	"itemwatch/pkg/scrapers/amazon"
	"itemwatch/pkg/scrapers/flipkart"
	"itemwatch/pkg/storage"
)

// Scrapers returns the source handlers in routing order.
func Scrapers() []scrapers.Scraper {
	return []scrapers.Scraper{amazon.New(), flipkart.New()}
}

// ScraperFor returns the first handler recognizing the URL, nil if none.
func ScraperFor(rawURL string) scrapers.Scraper {
	for _, s := range Scrapers() {
		if s.Recognizes(rawURL) {
			return s
		}
	}
	return nil
}

// ScrapeProduct routes the URL and runs a single scrape.
func ScrapeProduct(ctx context.Context, r render.Renderer, rawURL string) (*models.Product, error) {
	s := ScraperFor(rawURL)
	if s == nil {
		return nil, models.ErrUnsupportedURL
	}
	return s.Scrape(ctx, r, rawURL)
}

// Storage is the slice of the store the check loop needs.
type Storage interface {
	GetActiveProducts(ctx context.Context) ([]storage.TrackedProduct, error)
	GetLatestPrice(ctx context.Context, productID int64) (*storage.PriceRecord, error)
	GetLowestPrice(ctx context.Context, productID int64) (float64, bool, error)
	RecordPrice(ctx context.Context, productID int64, price, originalPrice float64, inStock bool) error
}

type Watcher struct {
	Store    Storage
	Alerts   *alerts.Dispatcher
	Renderer render.Renderer
	Delay    time.Duration

	// Scrape can be swapped out in tests; nil means ScrapeProduct.
	Scrape func(ctx context.Context, r render.Renderer, rawURL string) (*models.Product, error)
}

// TargetGap is one targeted product's distance from its target after a batch.
type TargetGap struct {
	Title  string
	Price  float64
	Target float64
}

func (g TargetGap) Gap() float64 {
	return g.Price - g.Target
}

// BatchResult aggregates one CheckAll pass.
type BatchResult struct {
	Attempted int
	Checked   int
	Failed    int
	Targeted  []TargetGap
}

// CheckProduct scrapes one tracked product, records the observation, and
// dispatches whatever changes it finds. The observation is on disk before
// any alert goes out, so a failed send never loses a data point.
func (w *Watcher) CheckProduct(ctx context.Context, p storage.TrackedProduct) (*models.Product, []alerts.Event, error) {
	scrape := w.Scrape
	if scrape == nil {
		scrape = ScrapeProduct
	}

	obs, err := scrape(ctx, w.Renderer, p.URL)
	if err != nil {
		return nil, nil, err
	}

	prev, err := w.Store.GetLatestPrice(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	lowest, _, err := w.Store.GetLowestPrice(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := w.Store.RecordPrice(ctx, p.ID, obs.Price, obs.OriginalPrice, obs.InStock); err != nil {
		return nil, nil, err
	}

	events := alerts.Detect(obs, prev, p.TargetPrice)
	if len(events) > 0 && w.Alerts != nil {
		title := p.Title
		if obs.Title != "" && obs.Title != "Unknown Product" {
			title = obs.Title
		}
		err := w.Alerts.Dispatch(events, alerts.Alert{
			Title:    title,
			URL:      p.URL,
			Current:  obs.Price,
			Previous: prev,
			Target:   p.TargetPrice,
			Lowest:   lowest,
		})
		if err != nil {
			return obs, events, err
		}
	}

	return obs, events, nil
}

// CheckAll runs one sequential pass over every active product. Per-product
// failures are logged and counted, never fatal for the batch; only context
// cancellation stops the loop early.
func (w *Watcher) CheckAll(ctx context.Context) (BatchResult, error) {
	products, err := w.Store.GetActiveProducts(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for i, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempted++
		log.Printf("[%d/%d] Checking: %s", i+1, len(products), p.Title)

		obs, events, err := w.CheckProduct(ctx, p)
		if err != nil {
			res.Failed++
			log.Printf("  check failed: %v", err)
		} else {
			res.Checked++
			if len(events) == 0 {
				logger.Dedup("  no change (₹%.2f)", obs.Price)
			} else {
				for _, e := range events {
					log.Printf("  %s at ₹%.2f", e, obs.Price)
				}
			}
			if p.TargetPrice > 0 {
				res.Targeted = append(res.Targeted, TargetGap{
					Title:  p.Title,
					Price:  obs.Price,
					Target: p.TargetPrice,
				})
			}
		}

		if w.Delay > 0 && i < len(products)-1 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(w.Delay):
			}
		}
	}

	logger.Flush()
	log.Printf("Checked %d products.", res.Attempted)
	return res, nil
}

// SendSummary emits the once-a-day batch summary when appropriate and
// returns the date it now considers last-sent. It holds back when there is
// no chat channel, when a summary already went out today, or when a
// targeted product is at or under target (that product already got its own
// alert, which beats a digest).
func (w *Watcher) SendSummary(res BatchResult, lastSent, now time.Time) (time.Time, error) {
	if w.Alerts == nil || !w.Alerts.HasChat() {
		return lastSent, nil
	}
	if sameDay(lastSent, now) {
		return lastSent, nil
	}

	var closest *TargetGap
	for i := range res.Targeted {
		g := res.Targeted[i]
		if g.Gap() <= 0 {
			return lastSent, nil
		}
		if closest == nil || g.Gap() < closest.Gap() {
			closest = &res.Targeted[i]
		}
	}

	var err error
	if closest != nil {
		err = w.Alerts.SendDailySummary(res.Attempted, closest.Title, closest.Price, closest.Gap())
	} else {
		err = w.Alerts.SendDailySummary(res.Attempted, "", 0, 0)
	}
	if err != nil {
		return lastSent, err
	}
	return now, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
