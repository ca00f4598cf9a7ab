// Package apperr defines the error taxonomy shared by repositories, services
// and the HTTP layer. Handlers never match on error strings; they use
// errors.Is against these sentinels.
package apperr

import "errors"

var (
	// ErrNotFound covers unknown content items and unknown orders.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateActiveOrder signals a re-purchase of an item the user
	// already owns through a PAID order.
	ErrDuplicateActiveOrder = errors.New("active paid order already exists")

	// ErrInvalidTransition signals an attempted transition out of a
	// terminal order state.
	ErrInvalidTransition = errors.New("invalid order state transition")

	// ErrInvalidSignature signals a gateway callback whose signature did
	// not verify. No state may be mutated when this is returned.
	ErrInvalidSignature = errors.New("invalid gateway signature")

	// ErrGatewayUnavailable signals a transient failure talking to the
	// payment gateway. Callers may retry.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrPollTimeout signals that status polling exhausted its attempt
	// budget without reaching a terminal state.
	ErrPollTimeout = errors.New("status polling timed out")
)
