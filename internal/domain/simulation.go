package domain

import "errors"

// Simulation parameter errors, surfaced by Validate before any run starts.
var (
	ErrEntryNotAboveExit  = errors.New("entry threshold must be above exit threshold")
	ErrNegativeFee        = errors.New("fee rate must not be negative")
	ErrNonPositiveHold    = errors.New("max hold days must be positive")
	ErrNonPositiveCapital = errors.New("initial capital must be positive")
)

// SimulationParams configures one trade simulation run. Passed by value into
// the simulator so parameter-search workers can vary thresholds without
// sharing state.
type SimulationParams struct {
	EntryThreshold float64 // enter when yesterday's composite score >= this
	ExitThreshold  float64 // exit when yesterday's composite score <= this
	FeeRate        float64 // proportional transaction fee per side
	MaxHoldDays    int     // forced liquidation after this many calendar days
	InitialCapital float64 // cash at the start of each security run

	// Fundamental gate. A fundamental score of 0 means "no data" and leaves
	// the gate open; a positive score must clear FinEntryThreshold to enter
	// and dropping to FinExitThreshold or below forces an exit signal.
	FinEntryThreshold float64
	FinExitThreshold  float64
}

// DefaultSimulationParams returns the standard simulation parameters.
// Entry/exit thresholds are intentionally left for the caller: the parameter
// search owns them.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		FeeRate:           0.003,
		MaxHoldDays:       120,
		InitialCapital:    20000,
		FinEntryThreshold: 70,
		FinExitThreshold:  50,
	}
}

// Validate fails fast on inconsistent parameters so a grid search never
// discovers a bad configuration mid-run.
func (p SimulationParams) Validate() error {
	if p.EntryThreshold <= p.ExitThreshold {
		return ErrEntryNotAboveExit
	}
	if p.FeeRate < 0 {
		return ErrNegativeFee
	}
	if p.MaxHoldDays <= 0 {
		return ErrNonPositiveHold
	}
	if p.InitialCapital <= 0 {
		return ErrNonPositiveCapital
	}
	return nil
}
