package domain

// Metrics holds the risk-adjusted performance metrics of one simulation.
// All ratios are fractions, not percentages: a 37% return is 0.37.
type Metrics struct {
	TotalReturn  float64
	WinRate      float64
	MaxDrawdown  float64 // positive fraction of peak equity
	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64
	ProfitFactor float64
	Expectancy   float64 // average pnl per trade, account currency
	TotalTrades  int
}

// Metric name constants used as ranking weight keys.
const (
	MetricSharpeRatio  = "sharpe_ratio"
	MetricSortinoRatio = "sortino_ratio"
	MetricCalmarRatio  = "calmar_ratio"
	MetricWinRate      = "win_rate"
	MetricProfitFactor = "profit_factor"
	MetricMaxDrawdown  = "max_drawdown" // inverted before normalization
	MetricTotalReturn  = "total_return"
	MetricExpectancy   = "expectancy"
)

// RankingEntry is the scored result of one (strategy, risk level,
// label config) combination. Immutable after scoring.
type RankingEntry struct {
	StrategyID     string
	RiskLevel      float64
	LabelConfigID  string
	Metrics        Metrics
	CompositeScore float64
	Blown          bool // account blew up during simulation; ranked last
}
