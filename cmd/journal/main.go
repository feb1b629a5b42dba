package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_trade_ema/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "bot.db", "path to the journal database")
	limit := flag.Int("limit", 20, "rows to print per table")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	orders, err := store.ListOrders(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Last %d orders:\n", len(orders))
	for _, o := range orders {
		dry := ""
		if o.DryRun {
			dry = " (dry run)"
		}
		fmt.Printf("- %s %s %s %f @ %f [%s]%s\n",
			o.CreatedAt.Format("2006-01-02 15:04:05"), o.Direction, o.MarketSymbol, o.Quantity, o.Limit, o.Reason, dry)
	}

	decisions, err := store.ListDecisions(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list decisions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nLast %d decisions:\n", len(decisions))
	for _, d := range decisions {
		fmt.Printf("- %s %s %s (+%d/-%d, held %f)\n",
			d.CreatedAt.Format("2006-01-02 15:04:05"), d.MarketSymbol, d.Decision, d.PositiveTicks, d.NegativeTicks, d.Available)
	}

	reports, err := store.ListReports(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list reports: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nLast %d reports:\n", len(reports))
	for _, r := range reports {
		fmt.Printf("- %s total=%f %s btc=%f\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.TotalValue, r.MainMarket, r.ReferenceRate)
	}
}
