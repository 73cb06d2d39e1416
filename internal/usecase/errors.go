package usecase

import "errors"

// Payment-callback error taxonomy. Every one of these is caught at the HTTP
// boundary and converted into one of the three redirect pages; none may leak
// to the payer as an unhandled error, because their bank may already hold
// captured funds.
var (
	// ErrAuthenticationDeclined: bank authentication failed or was abandoned
	// before payment. User-recoverable; no state was changed.
	ErrAuthenticationDeclined = errors.New("bank authentication declined")

	// ErrApprovalUnreachable: transport failure or timeout on the approval
	// call. Retryable; no state was changed.
	ErrApprovalUnreachable = errors.New("approval call unreachable")

	// ErrApprovalDeclined: the approval call completed and the gateway said
	// no. Terminal for this attempt; payment_status moved to failed.
	ErrApprovalDeclined = errors.New("approval declined")

	// ErrOrderNotFound: the callback referenced an unknown order number.
	// Security-relevant; the response must not reveal whether the order ever
	// existed.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateCheckout: the create-order idempotency key is already in
	// flight.
	ErrDuplicateCheckout = errors.New("duplicate checkout request")
)
