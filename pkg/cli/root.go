// Package cli wires the tracker's commands together.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"itemwatch/pkg/alerts"
	"itemwatch/pkg/config"
	"itemwatch/pkg/render"
	"itemwatch/pkg/storage"
	"itemwatch/pkg/watcher"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itemwatch",
	Short: "itemwatch tracks Amazon.in and Flipkart prices and alerts you on drops.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v", cfg.DBPath, err)
	}
	return store
}

func newRenderer(cfg config.Config) render.Renderer {
	if cfg.Renderer == "static" {
		return render.NewStatic()
	}
	return render.NewChrome()
}

func newDispatcher(cfg config.Config) *alerts.Dispatcher {
	d := &alerts.Dispatcher{}
	if cfg.SMTP != nil {
		d.Email = alerts.NewEmailNotifier(*cfg.SMTP)
	}
	if cfg.Telegram != nil {
		d.Chat = alerts.NewTelegramNotifier(*cfg.Telegram)
	}
	return d
}

func newWatcher(cfg config.Config, store *storage.Store) *watcher.Watcher {
	return &watcher.Watcher{
		Store:    store,
		Alerts:   newDispatcher(cfg),
		Renderer: newRenderer(cfg),
		Delay:    cfg.CheckDelay,
	}
}
