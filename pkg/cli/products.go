package cli

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"itemwatch/pkg/config"
	"itemwatch/pkg/watcher"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var addTarget *float64

func init() {
	addTarget = addCmd.Flags().Float64("target", 0, "Alert when the price reaches this amount.")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(historyCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <url> [--target <price>]",
	Short: "Starts tracking a product page.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		if watcher.ScraperFor(url) == nil {
			log.Fatal("URL not supported. Track Amazon.in or Flipkart product pages.")
		}

		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		fmt.Println("Fetching product page...")
		obs, err := watcher.ScrapeProduct(cmd.Context(), newRenderer(cfg), url)
		if err != nil {
			log.Fatalf("Could not read the product page: %v", err)
		}

		id, err := store.AddProduct(cmd.Context(), url, obs.Title, obs.Source, *addTarget)
		if err != nil {
			log.Fatalf("Failed to save product: %v", err)
		}
		if err := store.RecordPrice(cmd.Context(), id, obs.Price, obs.OriginalPrice, obs.InStock); err != nil {
			log.Fatalf("Failed to record price: %v", err)
		}

		fmt.Printf("Tracking #%d: %s\n", id, obs.Title)
		fmt.Printf("  Current price: ₹%.2f", obs.Price)
		if obs.OriginalPrice > 0 {
			fmt.Printf(" (MRP ₹%.2f, %.1f%% off)", obs.OriginalPrice, obs.DiscountPercent())
		}
		fmt.Println()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every tracked product with its latest price.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		products, err := store.GetActiveProducts(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}
		if len(products) == 0 {
			fmt.Println("No products tracked yet. Use 'itemwatch add <url>' to start.")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Title", "Price", "Target", "Stock", "Source"})
		for _, p := range products {
			price, stock := "-", "-"
			if latest, err := store.GetLatestPrice(cmd.Context(), p.ID); err == nil && latest != nil {
				price = fmt.Sprintf("₹%.2f", latest.Price)
				if latest.InStock {
					stock = "in stock"
				} else {
					stock = "out of stock"
				}
			}
			target := "-"
			if p.TargetPrice > 0 {
				target = fmt.Sprintf("₹%.2f", p.TargetPrice)
			}
			t.AppendRow(table.Row{p.ID, truncateTitle(p.Title), price, target, stock, p.Source})
		}
		t.Render()
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stops tracking a product. Its price history is kept.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		if err := store.RemoveProduct(cmd.Context(), id); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Stopped tracking product #%d.\n", id)
	},
}

var targetCmd = &cobra.Command{
	Use:   "target <id> <price>",
	Short: "Sets a target price. Use 0 to clear it.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil || price < 0 {
			log.Fatalf("Invalid price: %s", args[1])
		}

		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		if _, err := store.GetProduct(cmd.Context(), id); err != nil {
			log.Fatal(err)
		}
		if err := store.SetTargetPrice(cmd.Context(), id, price); err != nil {
			log.Fatal(err)
		}
		if price > 0 {
			fmt.Printf("Target for product #%d set to ₹%.2f.\n", id, price)
		} else {
			fmt.Printf("Target for product #%d cleared.\n", id)
		}
	},
}

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "Number of records to show.")
}

var historyCmd = &cobra.Command{
	Use:   "history <id> [--limit <n>]",
	Short: "Prints a product's recorded price history, newest first.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		cfg := config.Load()
		store := openStore(cfg)
		defer store.Close()

		product, err := store.GetProduct(cmd.Context(), id)
		if err != nil {
			log.Fatal(err)
		}
		records, err := store.GetPriceHistory(cmd.Context(), id, *historyLimit)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s\n", product.Title)
		if lowest, ok, err := store.GetLowestPrice(cmd.Context(), id); err == nil && ok {
			fmt.Printf("All-time lowest: ₹%.2f\n", lowest)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Recorded", "Price", "MRP", "Stock"})
		for _, rec := range records {
			mrp := "-"
			if rec.OriginalPrice > 0 {
				mrp = fmt.Sprintf("₹%.2f", rec.OriginalPrice)
			}
			stock := "in stock"
			if !rec.InStock {
				stock = "out of stock"
			}
			t.AppendRow(table.Row{
				rec.RecordedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("₹%.2f", rec.Price),
				mrp,
				stock,
			})
		}
		t.Render()
	},
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid product ID: %s", raw)
	}
	return id
}

func truncateTitle(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:60] + "..."
}
