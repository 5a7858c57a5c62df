// Package main runs the full backtest sweep: labeling, simulation of every
// (strategy, risk, config) combination, ranking and report generation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	osignal "os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dans91364-create/NECROZMAv2/internal/batch"
	"github.com/dans91364-create/NECROZMAv2/internal/config"
	"github.com/dans91364-create/NECROZMAv2/internal/labelcache"
	"github.com/dans91364-create/NECROZMAv2/internal/labeler"
	"github.com/dans91364-create/NECROZMAv2/internal/metrics"
	"github.com/dans91364-create/NECROZMAv2/internal/observability"
	"github.com/dans91364-create/NECROZMAv2/internal/pricedata"
	"github.com/dans91364-create/NECROZMAv2/internal/ranking"
	"github.com/dans91364-create/NECROZMAv2/internal/reporting"
	"github.com/dans91364-create/NECROZMAv2/internal/signal"
	"github.com/dans91364-create/NECROZMAv2/internal/simulation"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
	"github.com/dans91364-create/NECROZMAv2/internal/storage/migrations"
	pgstore "github.com/dans91364-create/NECROZMAv2/internal/storage/postgres"
	"github.com/dans91364-create/NECROZMAv2/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	seriesPath := flag.String("series", "", "Parquet price series (overrides config)")
	providerSpec := flag.String("providers", "momentum:5:0.005,mean_reversion:20:0.01",
		"Comma-separated providers as name:lookback:threshold")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[backtest] ", log.LstdFlags)

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

	slogger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	osignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling sweep...", sig)
		cancel()
	}()

	var obs *observability.Metrics
	if *metricsAddr != "" {
		obs = observability.NewMetrics("")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	providers, err := parseProviders(*providerSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing providers: %v\n", err)
		os.Exit(1)
	}

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
	simulator, err := simulation.NewSimulator(cfg.Simulation.InitialBalance, cfg.Labeling.PipSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating simulator: %v\n", err)
		os.Exit(1)
	}
	ranker, err := ranking.NewRanker(cfg.Ranking.Weights, cfg.Ranking.TopN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating ranker: %v\n", err)
		os.Exit(1)
	}

	var entryStore storage.RankingEntryStore
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
			os.Exit(1)
		}
		entryStore = pgstore.NewRankingEntryStore(pool)
		logger.Printf("Checkpointing entries to postgres")
	}

	runner, err := batch.New(batch.Options{
		Scanner:       scanner,
		Simulator:     simulator,
		Calculator:    metrics.NewCalculator(cfg.Simulation.PeriodsPerYear),
		Ranker:        ranker,
		Providers:     providers,
		RiskLevels:    cfg.Simulation.RiskLevels,
		Configs:       cfg.Configs(),
		Cache:         labelcache.New(cfg.Data.CacheDir).WithLogger(slogger),
		EntryStore:    entryStore,
		Observability: obs,
		Workers:       cfg.Labeling.Workers,
		Verbose:       *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating runner: %v\n", err)
		os.Exit(1)
	}

	result, err := runner.Run(ctx, series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep error: %v\n", err)
		os.Exit(1)
	}

	logger.Printf("Sweep completed: %d combos simulated, %d failed, %d errors",
		result.CombosSimulated, result.CombosFailed, len(result.Errors))
	for _, e := range result.Errors {
		logger.Printf("  error: %s", e)
	}

	report := reporting.NewGenerator().Generate(result, result.Tables)
	if err := writeReports(*outputDir, report, obs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Backtest completed:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/ranking.csv\n", *outputDir)
	if len(result.Legendaries) > 0 {
		top := result.Legendaries[0]
		fmt.Printf("  Top combo: %s risk=%g config=%s score=%.4f\n",
			top.StrategyID, top.RiskLevel, top.LabelConfigID, top.CompositeScore)
	}
}

// parseProviders builds a provider registry from name:lookback:threshold
// entries and returns the registered providers in ID order.
func parseProviders(list string) ([]signal.Provider, error) {
	registry := signal.NewRegistry()
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed provider %q, want name:lookback:threshold", part)
		}
		lookback, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("provider %q lookback: %w", part, err)
		}
		threshold, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("provider %q threshold: %w", part, err)
		}

		switch fields[0] {
		case "momentum":
			p, err := signal.NewMomentumProvider(lookback, threshold)
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", part, err)
			}
			registry.Register(p)
		case "mean_reversion":
			p, err := signal.NewMeanReversionProvider(lookback, threshold)
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", part, err)
			}
			registry.Register(p)
		default:
			return nil, fmt.Errorf("unknown provider %q", fields[0])
		}
	}
	providers := registry.All()
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers in %q", list)
	}
	return providers, nil
}

func writeReports(dir string, report *reporting.Report, obs *observability.Metrics) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "REPORT.md"), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "ranking.csv"), []byte(reporting.RenderCSV(report.Ranked)), 0o644); err != nil {
		return err
	}
	obs.RecordReportGenerated()
	return nil
}
