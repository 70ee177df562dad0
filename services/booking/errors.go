package booking

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// Error codes for each failure class in the booking-payment workflow.
const (
	CodePrecondition    = "preconditionFailed"
	CodeBookingCreation = "bookingCreationFailed"
	CodePaymentAuth     = "paymentAuthorizationFailed"
	CodePaymentConfirm  = "paymentConfirmationFailed"
	CodeFinalization    = "finalizationFailed"
)

// fallbackMessage is shown when no richer failure detail is available.
const fallbackMessage = "Something went wrong while processing your booking. Please try again."

// SagaError tags a workflow failure with the class it belongs to, so the
// orchestrator can decide whether compensation applies and the HTTP layer can
// pick a status code.
type SagaError struct {
	Code    string
	Message string
	Err     error
}

func (e *SagaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SagaError) Unwrap() error { return e.Err }

// NewPreconditionError rejects a booking attempt before any side effect.
func NewPreconditionError(msg string) error {
	return &SagaError{Code: CodePrecondition, Message: msg}
}

func newPhaseError(code, msg string, err error) *SagaError {
	return &SagaError{Code: code, Message: msg, Err: err}
}

// needsCompensation reports whether a failure with this code leaves behind a
// pending booking that must be cancelled. Only phases after booking creation
// qualify.
func needsCompensation(code string) bool {
	switch code {
	case CodePaymentAuth, CodePaymentConfirm, CodeFinalization:
		return true
	}
	return false
}

// UserMessage extracts the most helpful human-readable message from a
// workflow error: the processor's own card message when present, then the
// tagged saga message, then the plain error text, then a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	var se *SagaError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}
