package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The success-code table encodes undocumented vendor behavior: every method
// has its own success code and they are not interchangeable. Cover it
// exhaustively.
func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		auth     string
		approval string
		method   PayMethod
		expected Outcome
	}{
		// authentication failures short-circuit to cancelled
		{"auth failed", "3001", "3001", MethodCard, OutcomeCancelled},
		{"auth abandoned", "9999", "", MethodCard, OutcomeCancelled},
		{"auth empty", "", "3001", MethodCard, OutcomeCancelled},

		// per-method success codes
		{"card success", "0000", "3001", MethodCard, OutcomeApproved},
		{"bank success", "0000", "4000", MethodBank, OutcomeApproved},
		{"mobile success", "0000", "A000", MethodMobile, OutcomeApproved},
		{"vbank success", "0000", "4100", MethodVBank, OutcomeApproved},

		// success codes do not cross methods
		{"card code on bank", "0000", "3001", MethodBank, OutcomeDeclined},
		{"bank code on card", "0000", "4000", MethodCard, OutcomeDeclined},
		{"vbank code on mobile", "0000", "4100", MethodMobile, OutcomeDeclined},
		{"mobile code on vbank", "0000", "A000", MethodVBank, OutcomeDeclined},

		// declines
		{"card decline code", "0000", "3002", MethodCard, OutcomeDeclined},
		{"empty approval code", "0000", "", MethodCard, OutcomeDeclined},
		{"unknown method never defaults to success", "0000", "3001", PayMethod("POINTS"), OutcomeDeclined},
		{"empty method", "0000", "3001", PayMethod(""), OutcomeDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.auth, tt.approval, tt.method))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "declined", OutcomeDeclined.String())
	assert.Equal(t, "approved", OutcomeApproved.String())
}
