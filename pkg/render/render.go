// Package render fetches a product page and returns its HTML. The rest of
// the system treats this as an opaque capability: implementations decide how
// a URL becomes a DOM.
package render

import (
	"context"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Request describes one page fetch. WaitSelector and Dismiss are best-effort
// hints; a renderer that cannot honor them (e.g. the static one) ignores them.
type Request struct {
	URL string

	// WaitSelector is an element that signals the main content has loaded.
	WaitSelector string

	// Dismiss lists selectors of interstitial overlay buttons to click
	// before extraction (login popups and the like).
	Dismiss []string

	// Settle is extra time to let dynamic price elements render.
	Settle time.Duration
}

type Renderer interface {
	// Fetch loads the page and returns its HTML. A load is attempted once
	// with a short timeout and retried once with a longer one; if the
	// second attempt fails too, the returned error is a
	// *models.NavigationError.
	Fetch(ctx context.Context, req Request) (string, error)
}
