package cli

import (
	"fmt"
	"log"

	"itemwatch/pkg/config"
	"itemwatch/pkg/watcher"

	"github.com/spf13/cobra"
)

var checkID *int64

func init() {
	checkID = checkCmd.Flags().Int64("id", 0, "Check only this product.")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(testCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [--id <id>]",
	Short: "Checks one product now, or every tracked product by default.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()
		w := newWatcher(cfg, store)

		if *checkID == 0 {
			res, err := w.CheckAll(cmd.Context())
			if err != nil {
				log.Fatal(err)
			}
			if res.Failed > 0 {
				fmt.Printf("%d of %d checks failed.\n", res.Failed, res.Attempted)
			}
			return
		}

		product, err := store.GetProduct(cmd.Context(), *checkID)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Checking: %s\n", product.Title)
		obs, events, err := w.CheckProduct(cmd.Context(), *product)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Price: ₹%.2f", obs.Price)
		if obs.OriginalPrice > 0 {
			fmt.Printf(" (MRP ₹%.2f, %.1f%% off)", obs.OriginalPrice, obs.DiscountPercent())
		}
		fmt.Println()
		if !obs.InStock {
			fmt.Println("Currently out of stock.")
		}
		for _, e := range events {
			fmt.Printf("Event: %s\n", e)
		}
	},
}

var testCmd = &cobra.Command{
	Use:   "test <url>",
	Short: "Scrapes a URL once without tracking it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		if watcher.ScraperFor(url) == nil {
			log.Fatal("URL not supported. Track Amazon.in or Flipkart product pages.")
		}

		cfg := config.Load()
		fmt.Println("Testing scraper...")
		obs, err := watcher.ScrapeProduct(cmd.Context(), newRenderer(cfg), url)
		if err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}

		fmt.Printf("\n%s\n", obs.Title)
		fmt.Printf("Price: ₹%.2f\n", obs.Price)
		if obs.OriginalPrice > 0 {
			fmt.Printf("MRP: ₹%.2f (%.1f%% off)\n", obs.OriginalPrice, obs.DiscountPercent())
		}
		if obs.InStock {
			fmt.Println("Stock: in stock")
		} else {
			fmt.Println("Stock: out of stock")
		}
		if obs.Seller != "" {
			fmt.Printf("Seller: %s\n", obs.Seller)
		}
		fmt.Printf("Source: %s\n", obs.Source)
	},
}
