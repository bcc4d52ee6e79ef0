// Package screener ranks securities by their latest composite score and
// keeps only the liquid ones, producing the daily watch list.
package screener

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/q5089877/stock-analysis/internal/lookup"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// Default screening parameters.
const (
	defaultTopN      = 30
	defaultMinVolume = 100000 // shares traded on the ranking day
)

// Candidate is one screened security with its ranking evidence.
type Candidate struct {
	SecurityID string
	Name       string
	Segment    string
	Date       time.Time // trading day the score applies to
	Score      float64
	Signals    []string
	Volume     int64
}

// Screener builds ranked watch lists from stored scores and bars.
type Screener struct {
	securityStore storage.SecurityStore
	priceBarStore storage.PriceBarStore
	scoreStore    storage.ScoreStore

	topN      int
	minVolume int64
}

// Options contains configuration for creating a Screener.
type Options struct {
	SecurityStore storage.SecurityStore
	PriceBarStore storage.PriceBarStore
	ScoreStore    storage.ScoreStore

	TopN      int   // 0 = default 30
	MinVolume int64 // 0 = default 100000
}

// New creates a screener.
func New(opts Options) *Screener {
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.MinVolume <= 0 {
		opts.MinVolume = defaultMinVolume
	}
	return &Screener{
		securityStore: opts.SecurityStore,
		priceBarStore: opts.PriceBarStore,
		scoreStore:    opts.ScoreStore,
		topN:          opts.TopN,
		minVolume:     opts.MinVolume,
	}
}

// ScreenSegment ranks one segment's securities as of a trading day.
func (s *Screener) ScreenSegment(ctx context.Context, segment string, asOf time.Time) ([]Candidate, error) {
	securities, err := s.securityStore.GetBySegment(ctx, segment)
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", segment, err)
	}
	ids := make([]string, len(securities))
	for i, sec := range securities {
		ids[i] = sec.SecurityID
	}
	return s.Screen(ctx, ids, asOf)
}

// Screen ranks the given securities by their most recent score at or before
// asOf. Securities without a score, without bars, or with a ranking-day
// volume below the threshold are dropped. The result is ordered score DESC
// with ties broken by security ID ASC, truncated to the top N.
func (s *Screener) Screen(ctx context.Context, securityIDs []string, asOf time.Time) ([]Candidate, error) {
	var candidates []Candidate

	for _, id := range securityIDs {
		c, ok, err := s.candidate(ctx, id, asOf)
		if err != nil {
			return nil, err
		}
		if ok {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].SecurityID < candidates[j].SecurityID
	})

	if len(candidates) > s.topN {
		candidates = candidates[:s.topN]
	}
	return candidates, nil
}

// candidate assembles one security's ranking row, reporting ok=false when
// the security does not qualify.
func (s *Screener) candidate(ctx context.Context, securityID string, asOf time.Time) (Candidate, bool, error) {
	records, err := s.scoreStore.GetByDateRange(ctx, securityID, time.Time{}, asOf)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("load scores for %s: %w", securityID, err)
	}
	latest, err := lookup.ScoreOn(asOf, records)
	if err != nil {
		return Candidate{}, false, nil // no score history, not an error
	}

	bars, err := s.priceBarStore.GetByDateRange(ctx, securityID, latest.Date, latest.Date)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("load bars for %s: %w", securityID, err)
	}
	bar := lookup.BarOn(latest.Date, bars)
	if bar == nil || bar.Volume <= s.minVolume {
		return Candidate{}, false, nil
	}

	sec, err := s.securityStore.GetByID(ctx, securityID)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("load security %s: %w", securityID, err)
	}

	return Candidate{
		SecurityID: securityID,
		Name:       sec.Name,
		Segment:    sec.Segment,
		Date:       latest.Date,
		Score:      latest.Score,
		Signals:    latest.Signals,
		Volume:     bar.Volume,
	}, true, nil
}
