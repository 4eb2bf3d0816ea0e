package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrPaymentURLMissing means the gateway answered without a redirect
	// payment method.
	ErrPaymentURLMissing = errors.New("payment URL missing in gateway response")
)

// PaymentError wraps a transaction-creation failure, carrying the gateway's
// own message when it sent one.
type PaymentError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment transaction failed: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("payment transaction failed: %v", e.Err)
	}
	return "payment transaction failed"
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// VerificationError wraps a verify-call failure. Distinct from a verified
// "not completed" outcome, which is a plain false.
type VerificationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *VerificationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment verification failed: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("payment verification failed: %v", e.Err)
	}
	return "payment verification failed"
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
