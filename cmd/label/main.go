// Package main scans a price series against the label config grid and
// prints per-config outcome statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dans91364-create/NECROZMAv2/internal/config"
	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/idhash"
	"github.com/dans91364-create/NECROZMAv2/internal/labelcache"
	"github.com/dans91364-create/NECROZMAv2/internal/labeler"
	"github.com/dans91364-create/NECROZMAv2/internal/pricedata"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
	chstore "github.com/dans91364-create/NECROZMAv2/internal/storage/clickhouse"
	"github.com/dans91364-create/NECROZMAv2/internal/storage/migrations"
	"github.com/dans91364-create/NECROZMAv2/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	seriesPath := flag.String("series", "", "Parquet price series (overrides config)")
	archive := flag.Bool("archive", false, "Archive outcome tables to ClickHouse")
	flag.Parse()

	logger := log.New(os.Stdout, "[label] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *seriesPath != "" {
		cfg.Data.SeriesPath = *seriesPath
	}
	if cfg.Data.SeriesPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no series path (use -series or data.series_path)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	series, err := pricedata.ReadSeries(cfg.Data.SeriesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading series: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("Loaded %d bars from %s", len(series), cfg.Data.SeriesPath)

	scanner, err := labeler.NewScanner(cfg.Labeling.PipSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating scanner: %v\n", err)
		os.Exit(1)
	}

	slogger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(slogger)

	configs := cfg.Configs()
	cache := labelcache.New(cfg.Data.CacheDir).WithLogger(slogger)

	tables, key, hit, err := cache.GetOrScan(ctx, series, configs, scanner, cfg.Labeling.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("Scanned %d configs (cache key %s, hit: %v)", len(tables), key, hit)

	fmt.Printf("%-16s %8s %8s %8s %8s %8s %8s %9s %9s\n",
		"CONFIG", "L_TGT", "L_STP", "S_TGT", "S_STP", "TIMEOUT", "UNRES", "L_WINRATE", "S_WINRATE")
	for _, t := range tables {
		st := t.Stats()
		fmt.Printf("%-16s %8d %8d %8d %8d %8d %8d %9.4f %9.4f\n",
			st.ConfigID,
			st.LongTargets, st.LongStops,
			st.ShortTargets, st.ShortStops,
			st.Timeouts, st.Unresolved,
			st.LongWinRate, st.ShortWinRate)
	}

	if *archive {
		if cfg.Storage.ClickhouseDSN == "" {
			fmt.Fprintln(os.Stderr, "Error: -archive requires storage.clickhouse_dsn")
			os.Exit(1)
		}
		if err := archiveTables(ctx, cfg.Storage.ClickhouseDSN, idhash.SeriesID(series), tables, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error archiving: %v\n", err)
			os.Exit(1)
		}
	}
}

// archiveTables stores every outcome table in ClickHouse, skipping tables
// that were archived by a previous run.
func archiveTables(ctx context.Context, dsn, seriesID string, tables []*domain.LabelTable, logger *log.Logger) error {
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	defer conn.Close()

	store := chstore.NewOutcomeTableStore(conn)
	archived := 0
	for _, t := range tables {
		if err := store.InsertTable(ctx, seriesID, t); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("archive %s: %w", t.ConfigID, err)
		}
		archived++
	}
	logger.Printf("Archived %d/%d outcome tables (series %s)", archived, len(tables), seriesID)
	return nil
}
