// Package scheduler drives periodic batch checks.
package scheduler

import (
	"context"
	"log"
	"time"

	"itemwatch/pkg/watcher"
)

// Run checks all products immediately, then on every interval tick until
// the context is cancelled. A run already in progress finishes its current
// product before shutdown takes effect. The last-summary date lives here
// for the process lifetime; it is not persisted.
func Run(ctx context.Context, w *watcher.Watcher, interval time.Duration) error {
	log.Printf("Watching every %s. Press Ctrl+C to stop.", interval)

	var lastSummary time.Time
	runOnce := func() {
		res, err := w.CheckAll(ctx)
		if err != nil {
			log.Printf("batch aborted: %v", err)
			return
		}
		lastSummary, err = w.SendSummary(res, lastSummary, time.Now())
		if err != nil {
			log.Printf("daily summary failed: %v", err)
		}
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down.")
			return ctx.Err()
		case <-ticker.C:
			runOnce()
		}
	}
}
