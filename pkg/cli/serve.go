package cli

import (
	"context"
	"errors"
	"log"

	"itemwatch/pkg/config"
	"itemwatch/pkg/scheduler"
	"itemwatch/pkg/web"

	"github.com/spf13/cobra"
)

var webPort *string

func init() {
	webPort = webCmd.Flags().String("port", "", "Port to listen on (overrides PORT).")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(webCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Checks all products now and then periodically until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		err := scheduler.Run(cmd.Context(), newWatcher(cfg, store), cfg.CheckInterval)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal(err)
		}
	},
}

var webCmd = &cobra.Command{
	Use:   "web [--port <port>]",
	Short: "Serves the HTTP API with docs on the root path.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if *webPort != "" {
			cfg.Port = *webPort
		}
		store := openStore(cfg)
		defer store.Close()

		srv := &web.Server{
			Store:   store,
			Watcher: newWatcher(cfg, store),
		}
		log.Fatal(srv.ListenAndServe(cfg.Port))
	},
}
