package gateway

// Outcome is the classified result of one payment attempt.
type Outcome int

const (
	// OutcomeCancelled: bank-side authentication failed or the payer
	// abandoned it. User-recoverable; the approval phase never ran.
	OutcomeCancelled Outcome = iota
	// OutcomeDeclined: the approval call completed but the gateway declined.
	OutcomeDeclined
	// OutcomeApproved: funds captured.
	OutcomeApproved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeDeclined:
		return "declined"
	case OutcomeApproved:
		return "approved"
	}
	return "unknown"
}

type PayMethod string

const (
	MethodCard   PayMethod = "CARD"
	MethodBank   PayMethod = "BANK"
	MethodMobile PayMethod = "CELLPHONE"
	MethodVBank  PayMethod = "VBANK"
)

// AuthSucceeded is the single first-phase result code meaning bank
// authentication passed. Anything else is an abandonment, not a decline.
const AuthSucceeded = "0000"

// approvalSuccess maps each payment method to its approval success code.
// These are vendor-specific and not interchangeable across methods; a new
// method needs an explicit entry here, never a default-success fallback.
var approvalSuccess = map[PayMethod]string{
	MethodCard:   "3001",
	MethodBank:   "4000",
	MethodMobile: "A000",
	MethodVBank:  "4100",
}

// Classify maps the raw gateway result codes for one attempt to an Outcome.
// A non-success authentication code short-circuits to Cancelled; an unknown
// method or unmatched approval code is a decline.
func Classify(authResultCode, approvalCode string, method PayMethod) Outcome {
	if authResultCode != AuthSucceeded {
		return OutcomeCancelled
	}
	want, ok := approvalSuccess[method]
	if !ok {
		return OutcomeDeclined
	}
	if approvalCode == want {
		return OutcomeApproved
	}
	return OutcomeDeclined
}
