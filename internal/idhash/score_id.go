package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeScoreID computes a deterministic score_id using SHA256.
// Formula: SHA256(security_id|date|mode)
// Returns hex-encoded hash (64 characters).
func ComputeScoreID(securityID string, date time.Time, mode string) string {
	data := fmt.Sprintf("%s|%s|%s",
		securityID,
		date.UTC().Format("2006-01-02"),
		mode,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
