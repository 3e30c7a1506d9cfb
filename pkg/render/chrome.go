package render

import (
	"context"
	"fmt"
	"log"
	"time"

	"itemwatch/pkg/models"

	"github.com/chromedp/chromedp"
)

// Chrome renders pages in headless Chrome. Both target sites build their
// price blocks with JavaScript, so this is the default renderer.
type Chrome struct {
	// NavTimeout bounds the first load attempt; the retry gets double.
	NavTimeout time.Duration
	RetryPause time.Duration
}

func NewChrome() *Chrome {
	return &Chrome{
		NavTimeout: 30 * time.Second,
		RetryPause: 2 * time.Second,
	}
}

func (c *Chrome) Fetch(ctx context.Context, req Request) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	html, err := c.attempt(browserCtx, req, c.NavTimeout)
	if err == nil {
		return html, nil
	}

	log.Printf("Retrying page load for %s... (%v)", req.URL, err)
	select {
	case <-time.After(c.RetryPause):
	case <-ctx.Done():
		return "", &models.NavigationError{URL: req.URL, Err: ctx.Err()}
	}

	html, err = c.attempt(browserCtx, req, 2*c.NavTimeout)
	if err != nil {
		return "", &models.NavigationError{URL: req.URL, Err: err}
	}
	return html, nil
}

func (c *Chrome) attempt(ctx context.Context, req Request, timeout time.Duration) (string, error) {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}

	// Readiness probe and overlay dismissal are best effort: a page that
	// never shows the probe element may still carry a price.
	if req.WaitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(ctx, 10*time.Second)
		_ = chromedp.Run(waitCtx, chromedp.WaitReady(req.WaitSelector, chromedp.ByQuery))
		cancelWait()
	}

	for _, sel := range req.Dismiss {
		var clicked bool
		dismissCtx, cancelDismiss := context.WithTimeout(ctx, 3*time.Second)
		_ = chromedp.Run(dismissCtx, chromedp.Evaluate(fmt.Sprintf(`
			(function() {
				const btn = document.querySelector(%q);
				if (btn) { btn.click(); return true; }
				return false;
			})()
		`, sel), &clicked))
		cancelDismiss()
		if clicked {
			break
		}
	}

	var html string
	extractCtx, cancelExtract := context.WithTimeout(ctx, timeout)
	defer cancelExtract()

	actions := []chromedp.Action{}
	if req.Settle > 0 {
		actions = append(actions, chromedp.Sleep(req.Settle))
	}
	actions = append(actions, chromedp.Evaluate(`document.documentElement.outerHTML`, &html))

	if err := chromedp.Run(extractCtx, actions...); err != nil {
		return "", err
	}
	return html, nil
}
