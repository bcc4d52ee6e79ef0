// Package search drives the trade simulator across a grid of entry/exit
// threshold pairs and picks the best-performing pair per market segment.
package search

import "errors"

// Grid validation errors.
var (
	ErrNonPositiveStep   = errors.New("grid step must be positive")
	ErrInvalidGridBounds = errors.New("grid entry range must sit above the exit floor")
)

// Pair is one (entry, exit) threshold combination.
type Pair struct {
	Entry float64
	Exit  float64
}

// GridConfig spans the threshold grid. Pairs are generated with
// Entry > Exit by construction, ascending entry then ascending exit.
type GridConfig struct {
	EntryMin float64
	EntryMax float64
	ExitMin  float64
	Step     float64
}

// DefaultGridConfig returns the standard swing-trading grid:
// entries 40..80, exits 20..entry-step, step 5.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		EntryMin: 40,
		EntryMax: 80,
		ExitMin:  20,
		Step:     5,
	}
}

// Validate rejects grids that cannot produce a single pair.
func (g GridConfig) Validate() error {
	if g.Step <= 0 {
		return ErrNonPositiveStep
	}
	if g.EntryMin <= g.ExitMin || g.EntryMax < g.EntryMin {
		return ErrInvalidGridBounds
	}
	return nil
}

// Pairs enumerates the grid in deterministic order: ascending entry, then
// ascending exit. Every pair satisfies Entry > Exit, so tie-breaking by
// first-encountered pair is stable across runs.
func (g GridConfig) Pairs() []Pair {
	var pairs []Pair
	for entry := g.EntryMin; entry <= g.EntryMax; entry += g.Step {
		for exit := g.ExitMin; exit < entry; exit += g.Step {
			pairs = append(pairs, Pair{Entry: entry, Exit: exit})
		}
	}
	return pairs
}
