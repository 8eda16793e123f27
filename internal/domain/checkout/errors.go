package checkout

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyCart is returned when checkout is entered or advanced with an
	// empty cart. The session emits a navigate-to-cart intent alongside it.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInFlight is returned while an order submission is being processed.
	ErrInFlight = errors.New("order submission in progress")
	// ErrWrongStep is returned when an operation is not valid in the current step.
	ErrWrongStep = errors.New("operation not allowed in current step")
	// ErrValidation is matched by ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrPaymentFailed is matched by PaymentFailedError.
	ErrPaymentFailed = errors.New("payment failed")
)

// ValidationError indicates that a step cannot be left because required
// fields are blank.
type ValidationError struct {
	Step    Step
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Step, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PaymentFailedError indicates the gateway did not accept the charge. The
// session stays at review and the order may be resubmitted.
type PaymentFailedError struct {
	Reference string
	Cause     error
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment for order %s failed: %v", e.Reference, e.Cause)
}

func (e *PaymentFailedError) Is(target error) bool {
	return target == ErrPaymentFailed
}

func (e *PaymentFailedError) Unwrap() error {
	return e.Cause
}
