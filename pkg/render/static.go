package render

import (
	"context"
	"log"
	"time"

	"itemwatch/pkg/models"

	"github.com/gocolly/colly/v2"
)

// Static fetches pages with a plain HTTP GET. It skips the wait/dismiss
// hints, so it only sees server-rendered markup; extraction fixtures and
// Chrome-less environments use it.
type Static struct {
	Timeout    time.Duration
	RetryPause time.Duration
}

func NewStatic() *Static {
	return &Static{
		Timeout:    30 * time.Second,
		RetryPause: 2 * time.Second,
	}
}

func (s *Static) Fetch(ctx context.Context, req Request) (string, error) {
	html, err := s.attempt(req.URL, s.Timeout)
	if err == nil {
		return html, nil
	}

	log.Printf("Retrying page load for %s... (%v)", req.URL, err)
	select {
	case <-time.After(s.RetryPause):
	case <-ctx.Done():
		return "", &models.NavigationError{URL: req.URL, Err: ctx.Err()}
	}

	html, err = s.attempt(req.URL, 2*s.Timeout)
	if err != nil {
		return "", &models.NavigationError{URL: req.URL, Err: err}
	}
	return html, nil
}

// A fresh collector per attempt: colly remembers visited URLs, and a retry
// of the same URL must not be refused as a revisit.
func (s *Static) attempt(url string, timeout time.Duration) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(timeout)

	var html string
	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})

	if err := c.Visit(url); err != nil {
		return "", err
	}
	return html, nil
}
