package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var ErrMalformedAmount = errors.New("amount must be non-empty digits")

// Signature computes the second-phase approval signature: the hex SHA-256
// digest of authToken || merchantID || amount || ediDate || merchantSecret.
// The field order is fixed by the gateway protocol; reordering breaks
// verification on the gateway side.
func Signature(authToken, merchantID, amount, ediDate, merchantSecret string) string {
	sum := sha256.Sum256([]byte(authToken + merchantID + amount + ediDate + merchantSecret))
	return hex.EncodeToString(sum[:])
}

// EDIDate formats t as YYYYMMDDHHMMSS. The gateway rejects stale values, so a
// fresh one is minted for every approval attempt and never reused on retry.
func EDIDate(t time.Time) string {
	return t.Format("20060102150405")
}

// ValidateAmount rejects malformed amount text before it can reach the
// signature computation or the wire.
func ValidateAmount(s string) error {
	if s == "" {
		return ErrMalformedAmount
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ErrMalformedAmount
		}
	}
	return nil
}
