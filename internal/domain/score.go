package domain

import "time"

// ScoreRecord represents one composite attractiveness score for a security on
// a day, together with the signal labels that produced it.
// Corresponds to score_records table in ClickHouse.
type ScoreRecord struct {
	ScoreID    string    // deterministic hash, see idhash
	SecurityID string    // FK to securities
	Date       time.Time // trading day the score applies to
	Score      float64   // composite score in [0,100]
	Signals    []string  // human-readable contributing signal labels
	CreatedAt  int64     // record creation timestamp (ms)
}

// SubScores holds the per-factor scores feeding a multi-factor composite.
// A nil field means the factor reported insufficient data for that security
// on that day.
type SubScores struct {
	Technical   *float64
	Fundamental *float64
	Sentiment   *float64
	Theme       *float64
	Borrow      *float64
}

// Factors returns all factor slots in fixed order
// (technical, fundamental, sentiment, theme, borrow).
func (s SubScores) Factors() []*float64 {
	return []*float64{s.Technical, s.Fundamental, s.Sentiment, s.Theme, s.Borrow}
}
