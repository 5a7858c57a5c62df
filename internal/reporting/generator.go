// Package reporting turns sweep results into CSV and Markdown reports.
package reporting

import (
	"sort"
	"time"

	"github.com/dans91364-create/NECROZMAv2/internal/batch"
	"github.com/dans91364-create/NECROZMAv2/internal/domain"
	"github.com/dans91364-create/NECROZMAv2/internal/ranking"
)

// Generator produces reports from sweep results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report from one sweep. tables may be nil when
// the label tables are no longer at hand; the labeling section is then empty.
func (g *Generator) Generate(result *batch.RunResult, tables []*domain.LabelTable) *Report {
	// Count unique strategies, risk levels and configs from the ranked entries
	strategySet := make(map[string]struct{})
	riskSet := make(map[float64]struct{})
	configSet := make(map[string]struct{})
	for _, e := range result.Ranked {
		strategySet[e.StrategyID] = struct{}{}
		riskSet[e.RiskLevel] = struct{}{}
		configSet[e.LabelConfigID] = struct{}{}
	}

	stats := make([]domain.TableStats, 0, len(tables))
	for _, t := range tables {
		stats = append(stats, t.Stats())
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ConfigID < stats[j].ConfigID
	})

	return &Report{
		GeneratedAt:    g.now(),
		BatchID:        result.BatchID,
		SeriesID:       result.SeriesID,
		StrategyCount:  len(strategySet),
		RiskLevelCount: len(riskSet),
		ConfigCount:    len(configSet),
		Sweep: SweepSummary{
			CombosSimulated: result.CombosSimulated,
			CombosFailed:    result.CombosFailed,
			CacheHit:        result.CacheHit,
			Errors:          result.Errors,
		},
		LabelStats:      stats,
		Ranked:          result.Ranked,
		Legendaries:     result.Legendaries,
		BestPerStrategy: ranking.BestPerStrategy(result.Ranked),
	}
}
