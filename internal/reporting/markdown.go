package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Segment Parameter Search Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Segments: %d | Securities: %d\n\n", r.SegmentCount, r.SecurityCount))

	// Best pair per segment
	sb.WriteString("## Best Thresholds by Segment\n\n")
	if len(r.SegmentBests) > 0 {
		sb.WriteString("| Segment | Entry | Exit | Mean Return % | Samples | Skipped |\n")
		sb.WriteString("|---------|-------|------|---------------|---------|--------|\n")
		for _, b := range r.SegmentBests {
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %.2f | %d | %d |\n",
				b.Segment, b.EntryThreshold, b.ExitThreshold, b.MeanReturnPct, b.SampleSize, b.Skipped))
		}
	} else {
		sb.WriteString("No segment results available.\n")
	}
	sb.WriteString("\n")

	// Full grid
	sb.WriteString("## Threshold Pair Results\n\n")
	if len(r.PairResults) > 0 {
		sb.WriteString("| Segment | Entry | Exit | Mean Return % | Samples | Trades | Forced Exits |\n")
		sb.WriteString("|---------|-------|------|---------------|---------|--------|-------------|\n")
		for _, p := range r.PairResults {
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %.2f | %d | %d | %d |\n",
				p.Segment, p.EntryThreshold, p.ExitThreshold,
				p.MeanReturnPct, p.SampleSize, p.TotalTrades, p.ForcedExits))
		}
	} else {
		sb.WriteString("No pair results available.\n")
	}
	sb.WriteString("\n")

	// Watch list
	sb.WriteString("## Watch List\n\n")
	if len(r.WatchList) > 0 {
		sb.WriteString("| Rank | Security | Name | Segment | Score | Volume | Win Rate % | Max DD % | Signals |\n")
		sb.WriteString("|------|----------|------|---------|-------|--------|------------|----------|--------|\n")
		for _, w := range r.WatchList {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.2f | %d | %.1f | %.1f | %s |\n",
				w.Rank, w.SecurityID, w.Name, w.Segment, w.Score, w.Volume,
				w.WinRate*100, w.MaxDrawdown*100,
				strings.Join(w.Signals, ", ")))
		}
	} else {
		sb.WriteString("No watch list entries.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
