// Package batch provides end-to-end sweep orchestration: labeling,
// simulation of every combination, metrics, ranking and checkpointing.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/idhash"
	"github.com/dans91364-create/NECROZMAv2/internal/labelcache"
	"github.com/dans91364-create/NECROZMAv2/internal/labeler"
	"github.com/dans91364-create/NECROZMAv2/internal/metrics"
	"github.com/dans91364-create/NECROZMAv2/internal/observability"
	"github.com/dans91364-create/NECROZMAv2/internal/ranking"
	"github.com/dans91364-create/NECROZMAv2/internal/signal"
	"github.com/dans91364-create/NECROZMAv2/internal/simulation"
	"github.com/dans91364-create/NECROZMAv2/internal/storage"
)

// ErrNoProviders is returned when a runner is created without signal providers.
var ErrNoProviders = errors.New("at least one signal provider is required")

// ErrNoConfigs is returned when a runner is created without label configs.
var ErrNoConfigs = errors.New("at least one label config is required")

// ErrNoRiskLevels is returned when a runner is created without risk levels.
var ErrNoRiskLevels = errors.New("at least one risk level is required")

// Runner coordinates the full sweep over every
// (provider, risk level, label config) combination of one price series.
type Runner struct {
	scanner    *labeler.Scanner
	cache      *labelcache.Cache
	simulator  *simulation.Simulator
	calculator *metrics.Calculator
	ranker     *ranking.Ranker

	providers  []signal.Provider
	riskLevels []float64
	configs    []domain.LabelConfig

	entryStore storage.RankingEntryStore
	obs        *observability.Metrics

	workers int
	verbose bool
}

// Options for creating Runner.
type Options struct {
	// Required components
	Scanner    *labeler.Scanner
	Simulator  *simulation.Simulator
	Calculator *metrics.Calculator
	Ranker     *ranking.Ranker

	// Sweep dimensions
	Providers  []signal.Provider
	RiskLevels []float64
	Configs    []domain.LabelConfig

	// Optional: reuse scan results across runs
	Cache *labelcache.Cache

	// Optional: persist ranked entries after the sweep
	EntryStore storage.RankingEntryStore

	// Optional: prometheus instrumentation
	Observability *observability.Metrics

	// Options
	Workers int // scan and sweep parallelism, 0 for GOMAXPROCS
	Verbose bool
}

// New creates a new Runner.
func New(opts Options) (*Runner, error) {
	if opts.Scanner == nil || opts.Simulator == nil || opts.Calculator == nil || opts.Ranker == nil {
		return nil, errors.New("scanner, simulator, calculator and ranker are required")
	}
	if len(opts.Providers) == 0 {
		return nil, ErrNoProviders
	}
	if len(opts.Configs) == 0 {
		return nil, ErrNoConfigs
	}
	if len(opts.RiskLevels) == 0 {
		return nil, ErrNoRiskLevels
	}

	return &Runner{
		scanner:    opts.Scanner,
		cache:      opts.Cache,
		simulator:  opts.Simulator,
		calculator: opts.Calculator,
		ranker:     opts.Ranker,
		providers:  opts.Providers,
		riskLevels: opts.RiskLevels,
		configs:    opts.Configs,
		entryStore: opts.EntryStore,
		obs:        opts.Observability,
		workers:    opts.Workers,
		verbose:    opts.Verbose,
	}, nil
}

// RunResult contains results from one sweep.
type RunResult struct {
	SeriesID        string
	BatchID         string
	CacheHit        bool
	Tables          []*domain.LabelTable
	CombosSimulated int
	CombosFailed    int
	Entries         []domain.RankingEntry // every scored combination, in sweep order
	Ranked          []domain.RankingEntry
	Legendaries     []domain.RankingEntry
	Errors          []string
}

// Run executes the full sweep over a price series.
// Phases:
//  1. Label the series for every config (cache-aware)
//  2. Generate signals for every provider
//  3. Simulate every (provider, risk, config) combination and score it
//  4. Rank all scored combinations
//  5. Checkpoint ranked entries if a store is wired
//
// Combination failures are isolated: they land in RunResult.Errors and the
// sweep continues. A canceled context stops dispatch between combinations;
// the combinations that completed before the abort are still ranked,
// checkpointed and returned on the result alongside ctx.Err().
func (r *Runner) Run(ctx context.Context, series domain.PriceSeries) (*RunResult, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate series: %w", err)
	}

	result := &RunResult{
		SeriesID: idhash.SeriesID(series),
		BatchID:  idhash.CacheKey(idhash.SeriesID(series), r.configs),
	}

	// Phase 1: Labeling
	r.log("Phase 1: Labeling series (%d bars, %d configs)...", len(series), len(r.configs))
	scanStart := time.Now()
	tables, cacheHit, err := r.labelSeries(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (labeling) failed: %w", err)
	}
	result.CacheHit = cacheHit
	result.Tables = tables
	r.obs.RecordCacheLookup(cacheHit)
	if !cacheHit {
		r.obs.RecordScan(len(r.configs), time.Since(scanStart).Seconds())
	}
	r.log("  Labeled %d configs (cache hit: %v)", len(tables), cacheHit)

	// Phase 2: Signal generation
	r.log("Phase 2: Generating signals for %d providers...", len(r.providers))
	signals := make(map[string]domain.SignalSeries, len(r.providers))
	for _, p := range r.providers {
		s, err := p.Signals(series)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("signals %s: %v", p.ID(), err))
			continue
		}
		signals[p.ID()] = s
	}
	r.log("  Generated %d signal series (%d errors)", len(signals), len(result.Errors))

	// Phase 3: Simulation sweep
	r.log("Phase 3: Simulating %d combinations...",
		len(signals)*len(r.riskLevels)*len(tables))
	simStart := time.Now()
	entries, sweepErr := r.runSweep(ctx, series, signals, tables, result)
	r.obs.RecordBatchPhase("simulation", time.Since(simStart).Seconds())
	result.Entries = entries
	if sweepErr != nil {
		r.log("  Sweep aborted after %d combinations, keeping completed work", result.CombosSimulated)
	} else {
		r.log("  Simulated %d combinations (%d failed)", result.CombosSimulated, result.CombosFailed)
	}

	// Phase 4: Ranking. Runs on the partial entries too when the sweep was
	// aborted, so completed work is never discarded.
	r.log("Phase 4: Ranking %d entries...", len(entries))
	result.Ranked = r.ranker.Rank(entries)
	result.Legendaries = r.ranker.Legendaries(result.Ranked)
	r.obs.RecordRanked(len(result.Ranked))

	// Phase 5: Checkpoint. The store write must survive the cancellation
	// that aborted the sweep, so it runs detached from ctx's cancel.
	if r.entryStore != nil && len(result.Ranked) > 0 {
		r.log("Phase 5: Checkpointing %d entries...", len(result.Ranked))
		if err := r.checkpoint(context.WithoutCancel(ctx), result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("checkpoint: %v", err))
		}
	}

	if sweepErr != nil {
		return result, sweepErr
	}

	r.log("Sweep completed: %d combos, %d ranked, %d errors",
		result.CombosSimulated, len(result.Ranked), len(result.Errors))

	return result, nil
}

// labelSeries scans the config grid, going through the cache when one is wired.
func (r *Runner) labelSeries(ctx context.Context, series domain.PriceSeries) ([]*domain.LabelTable, bool, error) {
	if r.cache != nil {
		tables, _, hit, err := r.cache.GetOrScan(ctx, series, r.configs, r.scanner, r.workers)
		return tables, hit, err
	}
	tables, err := r.scanner.ScanGrid(ctx, series, r.configs, r.workers)
	return tables, false, err
}

// combo is one (provider, risk level, label table) simulation unit.
type combo struct {
	providerID string
	signals    domain.SignalSeries
	riskLevel  float64
	table      *domain.LabelTable
}

// runSweep simulates and scores every combination, fanning combos across a
// worker pool. Failures are collected, not returned; only context
// cancellation aborts the sweep, and then dispatch stops between combos and
// the partial entries are returned with ctx.Err().
func (r *Runner) runSweep(
	ctx context.Context,
	series domain.PriceSeries,
	signals map[string]domain.SignalSeries,
	tables []*domain.LabelTable,
	result *RunResult,
) ([]domain.RankingEntry, error) {
	var combos []combo
	for _, p := range r.providers {
		sig, ok := signals[p.ID()]
		if !ok {
			continue
		}
		for _, riskLevel := range r.riskLevels {
			for _, table := range tables {
				combos = append(combos, combo{
					providerID: p.ID(),
					signals:    sig,
					riskLevel:  riskLevel,
					table:      table,
				})
			}
		}
	}

	workers := r.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	// Per-combo result slots keep entry and error ordering deterministic
	// regardless of completion order.
	type slot struct {
		entry  *domain.RankingEntry
		trades int
		err    error
	}
	slots := make([]slot, len(combos))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				c := combos[idx]
				simResult, err := r.simulator.Run(series, c.signals, c.table, c.riskLevel)
				if err != nil {
					slots[idx].err = err
					continue
				}
				slots[idx].entry = &domain.RankingEntry{
					StrategyID:    c.providerID,
					RiskLevel:     c.riskLevel,
					LabelConfigID: c.table.ConfigID,
					Metrics:       r.calculator.Compute(simResult),
					Blown:         simResult.Blown,
				}
				slots[idx].trades = len(simResult.Trades)
			}
		}()
	}

	var ctxErr error
dispatch:
	for i := range combos {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var entries []domain.RankingEntry
	for i, s := range slots {
		switch {
		case s.entry != nil:
			entries = append(entries, *s.entry)
			result.CombosSimulated++
			r.obs.RecordCombo(s.trades, s.entry.Blown)
		case s.err != nil:
			c := combos[i]
			result.CombosFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("simulate %s/%g/%s: %v",
				c.providerID, c.riskLevel, c.table.ConfigID, s.err))
			r.obs.RecordComboError()
		}
	}
	return entries, ctxErr
}

// checkpoint persists the ranked entries under the batch ID, one combo at a
// time. Combos a previous run of the same batch already landed are skipped,
// so a sweep resumed after an abort fills in only the missing combinations.
func (r *Runner) checkpoint(ctx context.Context, result *RunResult) error {
	for i := range result.Ranked {
		err := r.entryStore.Insert(ctx, result.BatchID, &result.Ranked[i])
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
	}
	return nil
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf(format, args...)
	}
}
