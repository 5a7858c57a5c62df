package reporting

import (
	"time"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// Report represents one sweep's research report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	BatchID     string
	SeriesID    string

	// Sweep dimensions
	StrategyCount  int
	RiskLevelCount int
	ConfigCount    int

	// Sweep summary
	Sweep SweepSummary

	// Labeling summary, one row per label config
	LabelStats []domain.TableStats

	// Scored combinations in rank order
	Ranked []domain.RankingEntry

	// Top combinations and per-strategy bests
	Legendaries     []domain.RankingEntry
	BestPerStrategy []domain.RankingEntry
}

// SweepSummary describes how the sweep itself went.
type SweepSummary struct {
	CombosSimulated int
	CombosFailed    int
	CacheHit        bool
	Errors          []string
}
