package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Run Report %s\n\n", r.Run.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Symbol | %s |\n", r.Run.Symbol))
	sb.WriteString(fmt.Sprintf("| Initial Capital | %.2f |\n", r.Run.Config.InitialCapital))
	sb.WriteString(fmt.Sprintf("| Final Value | %.2f |\n", r.Run.FinalValue))
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f%% |\n", r.Run.TotalReturn))
	sb.WriteString(fmt.Sprintf("| Bars | %d |\n", r.Run.BarCount))
	sb.WriteString(fmt.Sprintf("| Signals | %d |\n", r.Run.TradeCount))
	sb.WriteString(fmt.Sprintf("| Open Position At End | %v |\n", r.Run.OpenAtEnd))
	sb.WriteString("\n")

	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Build Levels | %d |\n", r.Run.Config.BuildLevels))
	sb.WriteString(fmt.Sprintf("| Profit Levels | %d |\n", r.Run.Config.ProfitLevels))
	sb.WriteString(fmt.Sprintf("| Max Position Ratio | %.2f |\n", r.Run.Config.MaxPositionRatio))
	sb.WriteString(fmt.Sprintf("| Buy Drop | %.4f |\n", r.Run.Config.BuyDrop))
	sb.WriteString(fmt.Sprintf("| Sell Rise | %.4f |\n", r.Run.Config.SellRise))
	sb.WriteString(fmt.Sprintf("| Level Spread | %.4f |\n", r.Run.Config.LevelSpread))
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Entry Time | Entry | Exit Time | Exit | Level | Quantity | Profit% |\n")
		sb.WriteString("|------------|-------|-----------|------|-------|----------|--------|\n")
		for _, t := range r.Trades {
			if t.Closed {
				sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %.2f | %d | %.4f | %.2f |\n",
					t.EntryTime, t.EntryPrice, t.ExitTime, t.ExitPrice, t.ExitLevel, t.Quantity, t.ProfitPct))
			} else {
				sb.WriteString(fmt.Sprintf("| %s | %.2f | open | - | - | %.4f | - |\n",
					t.EntryTime, t.EntryPrice, t.Quantity))
			}
		}
	} else {
		sb.WriteString("No trades in this run.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Signals\n\n")
	if len(r.Signals) > 0 {
		sb.WriteString("| Seq | Time | Side | Price | Quantity | Level |\n")
		sb.WriteString("|-----|------|------|-------|----------|-------|\n")
		for _, s := range r.Signals {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %.2f | %.4f | %d |\n",
				s.Seq, s.Time, s.Side, s.Price, s.Quantity, s.Level))
		}
	} else {
		sb.WriteString("No signals in this run.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
