package reporting

import (
	"fmt"
	"strings"

	"github.com/dans91364-create/NECROZMAv2/internal/domain"
)

// RenderCSV renders ranked entries as CSV string, highest score first.
func RenderCSV(entries []domain.RankingEntry) string {
	var sb strings.Builder

	// Header
	sb.WriteString("rank,strategy_id,risk_level,label_config_id,composite_score,")
	sb.WriteString("total_return,win_rate,max_drawdown,sharpe_ratio,sortino_ratio,")
	sb.WriteString("calmar_ratio,profit_factor,expectancy,total_trades,blown\n")

	// Rows
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d,%s,%g,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%t\n",
			i+1,
			e.StrategyID,
			e.RiskLevel,
			e.LabelConfigID,
			e.CompositeScore,
			e.Metrics.TotalReturn,
			e.Metrics.WinRate,
			e.Metrics.MaxDrawdown,
			e.Metrics.SharpeRatio,
			e.Metrics.SortinoRatio,
			e.Metrics.CalmarRatio,
			e.Metrics.ProfitFactor,
			e.Metrics.Expectancy,
			e.Metrics.TotalTrades,
			e.Blown,
		))
	}

	return sb.String()
}
