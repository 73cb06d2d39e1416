package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignatureIsDeterministic(t *testing.T) {
	a := Signature("tok", "mid001", "50000", "20260115093011", "secret")
	b := Signature("tok", "mid001", "50000", "20260115093011", "secret")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha-256
}

func TestSignatureChangesWithAnyField(t *testing.T) {
	base := Signature("tok", "mid001", "50000", "20260115093011", "secret")

	tests := []struct {
		name string
		sig  string
	}{
		{"auth token", Signature("tok2", "mid001", "50000", "20260115093011", "secret")},
		{"merchant id", Signature("tok", "mid002", "50000", "20260115093011", "secret")},
		{"amount", Signature("tok", "mid001", "50001", "20260115093011", "secret")},
		{"edi date", Signature("tok", "mid001", "50000", "20260115093012", "secret")},
		{"merchant secret", Signature("tok", "mid001", "50000", "20260115093011", "secret2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.sig)
		})
	}
}

// The concatenation has no separators, so the fixed 14-char ediDate is what
// keeps adjacent numeric fields from absorbing each other's digits. Amount
// "100" and amount "1000" must never produce the same digest.
func TestSignatureAdjacentFieldBoundary(t *testing.T) {
	a := Signature("tok", "mid001", "100", EDIDate(time.Date(2026, 1, 15, 9, 30, 11, 0, time.UTC)), "secret")
	b := Signature("tok", "mid001", "1000", EDIDate(time.Date(2026, 1, 15, 9, 30, 11, 0, time.UTC)), "secret")
	assert.NotEqual(t, a, b)
	assert.Len(t, EDIDate(time.Now()), 14)
}

func TestEDIDateFormat(t *testing.T) {
	ts := time.Date(2026, 1, 15, 9, 30, 11, 0, time.UTC)
	assert.Equal(t, "20260115093011", EDIDate(ts))
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"50000", true},
		{"0", true},
		{"1", true},
		{"", false},
		{"-100", false},
		{"100.5", false},
		{"10 0", false},
		{"abc", false},
		{"１００", false}, // full-width digits are not digits
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedAmount)
			}
		})
	}
}
