package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Sweep Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Batch: `%s` | Series: `%s`\n\n", r.BatchID, r.SeriesID))
	sb.WriteString(fmt.Sprintf("Strategies: %d | Risk Levels: %d | Configs: %d\n\n",
		r.StrategyCount, r.RiskLevelCount, r.ConfigCount))

	// Sweep Summary
	sb.WriteString("## Sweep Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Combinations Simulated | %d |\n", r.Sweep.CombosSimulated))
	sb.WriteString(fmt.Sprintf("| Combinations Failed | %d |\n", r.Sweep.CombosFailed))
	sb.WriteString(fmt.Sprintf("| Label Cache Hit | %t |\n", r.Sweep.CacheHit))
	sb.WriteString("\n")

	if len(r.Sweep.Errors) > 0 {
		sb.WriteString("### Errors\n\n")
		for _, err := range r.Sweep.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	// Labeling Summary
	sb.WriteString("## Labeling Summary\n\n")
	if len(r.LabelStats) > 0 {
		sb.WriteString("| Config | Long Targets | Long Stops | Long WinRate | Short Targets | Short Stops | Short WinRate | Timeouts | Unresolved |\n")
		sb.WriteString("|--------|--------------|------------|--------------|---------------|-------------|---------------|----------|------------|\n")
		for _, s := range r.LabelStats {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.4f | %d | %d | %.4f | %d | %d |\n",
				s.ConfigID,
				s.LongTargets, s.LongStops, s.LongWinRate,
				s.ShortTargets, s.ShortStops, s.ShortWinRate,
				s.Timeouts, s.Unresolved))
		}
	} else {
		sb.WriteString("No labeling summary available.\n")
	}
	sb.WriteString("\n")

	// Legendaries
	sb.WriteString("## Legendaries\n\n")
	writeEntryTable(&sb, r.Legendaries)

	// Best Per Strategy
	sb.WriteString("## Best Per Strategy\n\n")
	writeEntryTable(&sb, r.BestPerStrategy)

	// Full Ranking
	sb.WriteString("## Full Ranking\n\n")
	writeEntryTable(&sb, r.Ranked)

	return sb.String()
}

func writeEntryTable(sb *strings.Builder, entries []domain.RankingEntry) {
	if len(entries) == 0 {
		sb.WriteString("No entries available.\n\n")
		return
	}

	sb.WriteString("| Rank | Strategy | Risk | Config | Score | Return | WinRate | MaxDD | Sharpe | Sortino | Calmar | PF | Trades | Blown |\n")
	sb.WriteString("|------|----------|------|--------|-------|--------|---------|-------|--------|---------|--------|----|--------|-------|\n")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("| %d | %s | %g | %s | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %d | %t |\n",
			i+1, e.StrategyID, e.RiskLevel, e.LabelConfigID,
			e.CompositeScore,
			e.Metrics.TotalReturn, e.Metrics.WinRate, e.Metrics.MaxDrawdown,
			e.Metrics.SharpeRatio, e.Metrics.SortinoRatio, e.Metrics.CalmarRatio,
			e.Metrics.ProfitFactor, e.Metrics.TotalTrades, e.Blown))
	}
	sb.WriteString("\n")
}
