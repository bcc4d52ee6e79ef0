package idhash

import (
	"testing"
	"time"
)

func TestComputeScoreID(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	got := ComputeScoreID("2330", date, "additive")
	if len(got) != 64 {
		t.Errorf("ComputeScoreID() length = %d, want 64", len(got))
	}

	// Verify determinism: same inputs should produce same output
	got2 := ComputeScoreID("2330", date, "additive")
	if got != got2 {
		t.Errorf("ComputeScoreID() not deterministic: %s != %s", got, got2)
	}
}

func TestComputeScoreID_Uniqueness(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	base := ComputeScoreID("2330", date, "additive")

	variants := []string{
		ComputeScoreID("2454", date, "additive"),
		ComputeScoreID("2330", date.AddDate(0, 0, 1), "additive"),
		ComputeScoreID("2330", date, "averaging"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base ID", i)
		}
	}
}

func TestComputeScoreID_TimeOfDayIgnored(t *testing.T) {
	// IDs key on the trading day, not the timestamp within it.
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	afternoon := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)

	if ComputeScoreID("2330", midnight, "additive") != ComputeScoreID("2330", afternoon, "additive") {
		t.Error("intra-day timestamps must map to the same score ID")
	}
}

func TestComputeResultID(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	got := ComputeResultID("2330", "semiconductor", 60, 40, start, end)
	if len(got) != 64 {
		t.Errorf("ComputeResultID() length = %d, want 64", len(got))
	}

	got2 := ComputeResultID("2330", "semiconductor", 60, 40, start, end)
	if got != got2 {
		t.Errorf("ComputeResultID() not deterministic: %s != %s", got, got2)
	}

	if ComputeResultID("2330", "semiconductor", 60, 45, start, end) == got {
		t.Error("different thresholds must produce different result IDs")
	}
	if ComputeResultID("2330", "financial", 60, 40, start, end) == got {
		t.Error("different segments must produce different result IDs")
	}
}

func TestComputeResultID_WindowIsPartOfIdentity(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	base := ComputeResultID("2330", "semiconductor", 60, 40, start, end)

	if ComputeResultID("2330", "semiconductor", 60, 40, start, end.AddDate(0, 6, 0)) == base {
		t.Error("a different end date must produce a different result ID")
	}
	if ComputeResultID("2330", "semiconductor", 60, 40, start.AddDate(0, 1, 0), end) == base {
		t.Error("a different start date must produce a different result ID")
	}
}
