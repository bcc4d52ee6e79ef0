package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders pair results as a CSV string.
func RenderCSV(rows []PairResultRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("segment,entry_threshold,exit_threshold,mean_return_pct,sample_size,total_trades,forced_exits\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.0f,%.0f,%.2f,%d,%d,%d\n",
			r.Segment,
			r.EntryThreshold,
			r.ExitThreshold,
			r.MeanReturnPct,
			r.SampleSize,
			r.TotalTrades,
			r.ForcedExits,
		))
	}

	return sb.String()
}

// RenderWatchListCSV renders watch-list rows as a CSV string.
func RenderWatchListCSV(rows []WatchListRow) string {
	var sb strings.Builder

	sb.WriteString("rank,security_id,name,segment,score,volume,win_rate,avg_daily_return,max_drawdown,trading_days,signals\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%.2f,%d,%.4f,%.4f,%.4f,%d,%s\n",
			r.Rank,
			r.SecurityID,
			r.Name,
			r.Segment,
			r.Score,
			r.Volume,
			r.WinRate,
			r.AvgDailyReturn,
			r.MaxDrawdown,
			r.TradingDays,
			strings.Join(r.Signals, ";"),
		))
	}

	return sb.String()
}
