// Package ranking normalizes metrics across the population of simulated
// combinations and selects the top entries by weighted composite score.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Ranker errors. Both are fatal at batch start.
var (
	ErrInvalidWeights = errors.New("ranking weights must sum to 1")
	ErrUnknownMetric  = errors.New("unknown ranking metric")
)

// weightTolerance allows for float accumulation when validating weights.
const weightTolerance = 1e-9

// knownMetrics maps weight keys to metric extractors.
var knownMetrics = map[string]func(domain.Metrics) float64{
	domain.MetricSharpeRatio:  func(m domain.Metrics) float64 { return m.SharpeRatio },
	domain.MetricSortinoRatio: func(m domain.Metrics) float64 { return m.SortinoRatio },
	domain.MetricCalmarRatio:  func(m domain.Metrics) float64 { return m.CalmarRatio },
	domain.MetricWinRate:      func(m domain.Metrics) float64 { return m.WinRate },
	domain.MetricProfitFactor: func(m domain.Metrics) float64 { return m.ProfitFactor },
	domain.MetricMaxDrawdown:  func(m domain.Metrics) float64 { return m.MaxDrawdown },
	domain.MetricTotalReturn:  func(m domain.Metrics) float64 { return m.TotalReturn },
	domain.MetricExpectancy:   func(m domain.Metrics) float64 { return m.Expectancy },
}

// invertedMetrics are those where a lower raw value must map to a higher
// normalized score.
var invertedMetrics = map[string]bool{
	domain.MetricMaxDrawdown: true,
}

// Ranker scores and orders ranking entries.
type Ranker struct {
	weights map[string]float64
	topN    int
}

// NewRanker validates the weights and creates a Ranker. Weight keys must
// name known metrics and sum to 1.
func NewRanker(weights map[string]float64, topN int) (*Ranker, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights supplied", ErrInvalidWeights)
	}
	sum := 0.0
	for name, w := range weights {
		if _, ok := knownMetrics[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidWeights, sum)
	}
	if topN <= 0 {
		topN = domain.DefaultLegendaryCount
	}
	return &Ranker{weights: weights, topN: topN}, nil
}

// Rank computes composite scores over the whole population and returns the
// entries in descending score order. Blown combinations keep their scores
// but always rank below intact ones. Identical inputs always produce an
// identical order.
func (r *Ranker) Rank(entries []domain.RankingEntry) []domain.RankingEntry {
	if len(entries) == 0 {
		return nil
	}

	ranked := make([]domain.RankingEntry, len(entries))
	copy(ranked, entries)

	// Min-max bounds per weighted metric over this population.
	type bounds struct{ min, max float64 }
	metricBounds := make(map[string]bounds, len(r.weights))
	for name := range r.weights {
		extract := knownMetrics[name]
		b := bounds{min: math.Inf(1), max: math.Inf(-1)}
		for _, e := range ranked {
			v := extract(e.Metrics)
			if v < b.min {
				b.min = v
			}
			if v > b.max {
				b.max = v
			}
		}
		metricBounds[name] = b
	}

	for i := range ranked {
		score := 0.0
		for name, w := range r.weights {
			v := knownMetrics[name](ranked[i].Metrics)
			b := metricBounds[name]
			var norm float64
			if b.max == b.min {
				// Degenerate population: the metric carries no signal.
				norm = 0.5
			} else {
				norm = (v - b.min) / (b.max - b.min)
			}
			if invertedMetrics[name] {
				norm = 1 - norm
			}
			score += w * norm
		}
		ranked[i].CompositeScore = score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Blown != b.Blown {
			return !a.Blown
		}
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Metrics.TotalReturn != b.Metrics.TotalReturn {
			return a.Metrics.TotalReturn > b.Metrics.TotalReturn
		}
		if a.StrategyID != b.StrategyID {
			return a.StrategyID < b.StrategyID
		}
		if a.RiskLevel != b.RiskLevel {
			return a.RiskLevel < b.RiskLevel
		}
		return a.LabelConfigID < b.LabelConfigID
	})
	return ranked
}

// Legendaries returns the top N entries of an already ranked slice.
func (r *Ranker) Legendaries(ranked []domain.RankingEntry) []domain.RankingEntry {
	if len(ranked) <= r.topN {
		return ranked
	}
	return ranked[:r.topN]
}

// BestPerStrategy returns the highest-ranked entry for each strategy ID,
// preserving rank order.
func BestPerStrategy(ranked []domain.RankingEntry) []domain.RankingEntry {
	seen := make(map[string]bool, len(ranked))
	var best []domain.RankingEntry
	for _, e := range ranked {
		if seen[e.StrategyID] {
			continue
		}
		seen[e.StrategyID] = true
		best = append(best, e)
	}
	return best
}
