package scoring

import (
	"math"
	"testing"
)

func TestMapRange_Edges(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"at low", 30, 100},
		{"below low", 10, 100},
		{"at high", 70, 0},
		{"above high", 95, 0},
		{"midpoint", 50, 50},
		{"NaN scores zero", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRange(tt.value, RSILow, RSIHigh)
			if got != tt.want {
				t.Errorf("MapRange(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestMapRange_Monotonic(t *testing.T) {
	// Lower raw value must always score higher inside the interval.
	prev := math.Inf(1)
	for v := 31.0; v < 70; v++ {
		got := MapRange(v, RSILow, RSIHigh)
		if got >= prev {
			t.Fatalf("MapRange not strictly decreasing at %v: %v >= %v", v, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("MapRange(%v) = %v out of bounds", v, got)
		}
		prev = got
	}
}

func TestMapSymmetric(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"clamped low", -5, 0},
		{"at cap low", -2, 0},
		{"zero is neutral", 0, 50},
		{"at cap high", 2, 100},
		{"clamped high", 7, 100},
		{"interior", 1, 75},
		{"NaN scores zero", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSymmetric(tt.value)
			if got != tt.want {
				t.Errorf("MapSymmetric(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-3); got != 0 {
		t.Errorf("Clamp(-3) = %v, want 0", got)
	}
	if got := Clamp(112); got != 100 {
		t.Errorf("Clamp(112) = %v, want 100", got)
	}
	if got := Clamp(55); got != 55 {
		t.Errorf("Clamp(55) = %v, want 55", got)
	}
}

func TestOverheatPenalty(t *testing.T) {
	d := NewOverheatDetector()

	if got := d.Penalty(79); got != 0 {
		t.Errorf("expected no penalty below threshold, got %v", got)
	}
	if got := d.Penalty(80); got != 0 {
		t.Errorf("expected no penalty at threshold, got %v", got)
	}
	if got := d.Penalty(90); got != 0.5 {
		t.Errorf("expected penalty 0.5 at RSI 90, got %v", got)
	}
	if got := d.Penalty(100); got != 1 {
		t.Errorf("expected penalty 1 at RSI 100, got %v", got)
	}
	if got := d.Penalty(math.NaN()); got != 0 {
		t.Errorf("expected no penalty for NaN RSI, got %v", got)
	}
}
