package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeResultID computes a deterministic result_id using SHA256.
// Formula: SHA256(security_id|segment|entry_threshold|exit_threshold|start|end)
// The evaluation window is part of the identity: the same threshold pair
// simulated over a different window is a different result, not a duplicate.
// Returns hex-encoded hash (64 characters).
func ComputeResultID(securityID, segment string, entryThreshold, exitThreshold float64, start, end time.Time) string {
	data := fmt.Sprintf("%s|%s|%g|%g|%s|%s",
		securityID,
		segment,
		entryThreshold,
		exitThreshold,
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
