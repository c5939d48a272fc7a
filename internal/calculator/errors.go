package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every validation failure returned by the engine
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputHint is the message shown to callers next to a validation failure
const InvalidInputHint = "Odds must be > 1, stake > 0, commission 0–100%"

// InputError describes which input was rejected and why
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func checkStake(field string, stake float64) error {
	if !finite(stake) || stake <= 0 {
		return invalid(field, "must be > 0 (got %v)", stake)
	}
	return nil
}

func checkCommission(field string, commission float64) error {
	if !finite(commission) || commission < 0 || commission > 1 {
		return invalid(field, "must be within [0, 1] (got %v)", commission)
	}
	return nil
}

// checkOdds rejects odds that are not strictly greater than min
func checkOdds(field string, odds, min float64) error {
	if !finite(odds) || odds <= min {
		return invalid(field, "must be > %v (got %v)", min, odds)
	}
	return nil
}
