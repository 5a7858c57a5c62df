package domain

// Default label grid. 6 targets × 5 stops × 6 horizons = 180 configs.
var (
	DefaultTargetPips  = []float64{5, 10, 15, 20, 30, 50}
	DefaultStopPips    = []float64{5, 10, 15, 20, 30}
	DefaultHorizonBars = []int{30, 60, 120, 240, 480, 1440}
)

// DefaultPipSize is the price value of one pip (0.1 for gold, 0.0001 for
// most FX pairs).
const DefaultPipSize = 0.1

// DefaultRiskLevels are the per-trade risk fractions tested by default.
var DefaultRiskLevels = []float64{0.01, 0.02, 0.05, 0.10}

// DefaultInitialBalance is the starting account balance for simulations.
const DefaultInitialBalance = 200.0

// DefaultLegendaryCount is the number of top-ranked combinations selected.
const DefaultLegendaryCount = 13

// DefaultWeights is the default composite-score weighting. The weights
// sum to 1; max_drawdown is inverted before normalization so lower raw
// drawdown scores higher.
var DefaultWeights = map[string]float64{
	MetricSharpeRatio:  0.25,
	MetricSortinoRatio: 0.20,
	MetricCalmarRatio:  0.15,
	MetricWinRate:      0.15,
	MetricProfitFactor: 0.15,
	MetricMaxDrawdown:  0.10,
}
