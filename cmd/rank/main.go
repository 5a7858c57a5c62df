// Package main queries checkpointed ranking entries from postgres and prints
// them as a table or CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	osignal "os/signal"
	"syscall"

	"github.com/dans91364-create/NECROZMAv2/internal/config"
	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/ranking"
	"github.com/dans91364-create/NECROZMAv2/internal/reporting"
	pgstore "github.com/dans91364-create/NECROZMAv2/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	batchID := flag.String("batch", "", "Batch ID to query (empty for all batches)")
	topN := flag.Int("top", 0, "Limit output to the top N entries (0 for all)")
	bestOnly := flag.Bool("best", false, "Show only the best entry per strategy")
	format := flag.String("format", "table", "Output format: table or csv")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: storage.postgres_dsn is not configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	osignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := pgstore.NewRankingEntryStore(pool)

	var entries []*domain.RankingEntry
	if *batchID != "" {
		entries, err = store.GetByBatch(ctx, *batchID)
	} else {
		entries, err = store.GetAll(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying entries: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No ranking entries found.")
		return
	}

	ranked := make([]domain.RankingEntry, len(entries))
	for i, e := range entries {
		ranked[i] = *e
	}
	if *bestOnly {
		ranked = ranking.BestPerStrategy(ranked)
	}
	if *topN > 0 && len(ranked) > *topN {
		ranked = ranked[:*topN]
	}

	switch *format {
	case "csv":
		fmt.Print(reporting.RenderCSV(ranked))
	case "table":
		printTable(ranked)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}
}

func printTable(entries []domain.RankingEntry) {
	fmt.Printf("%-4s %-28s %-6s %-14s %-8s %-8s %-8s %-8s %-6s\n",
		"RANK", "STRATEGY", "RISK", "CONFIG", "SCORE", "RETURN", "WINRATE", "MAXDD", "BLOWN")
	for i, e := range entries {
		fmt.Printf("%-4d %-28s %-6g %-14s %-8.4f %-8.2f %-8.2f %-8.2f %-6t\n",
			i+1, e.StrategyID, e.RiskLevel, e.LabelConfigID,
			e.CompositeScore, e.Metrics.TotalReturn,
			e.Metrics.WinRate, e.Metrics.MaxDrawdown, e.Blown)
	}
}
