package domain

// BacktestResult represents the realized outcome of simulating one security
// with one (entry, exit) threshold pair.
// Corresponds to backtest_results table in ClickHouse.
type BacktestResult struct {
	ResultID       string  // deterministic hash, see idhash
	SecurityID     string  // FK to securities
	Segment        string  // industry group the run was sampled for
	EntryThreshold float64 // composite score entry threshold
	ExitThreshold  float64 // composite score exit threshold
	ReturnPct      float64 // realized return over initial capital, percent
	Trades         int     // completed round trips, including forced exits
	ForcedExits    int     // exits triggered by the max-hold limit alone
	CreatedAt      int64   // record creation timestamp (ms)
}

// SegmentBest is the winning threshold pair for one market segment after a
// full grid search.
type SegmentBest struct {
	Segment        string  // industry group
	EntryThreshold float64 // best entry threshold
	ExitThreshold  float64 // best exit threshold
	MeanReturnPct  float64 // mean realized return across the sample, percent
	SampleSize     int     // securities that produced a result
	Skipped        int     // securities excluded for lacking history
}
