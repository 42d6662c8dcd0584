package errors

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so callers can decide whether to abort a
// single bar, a run, or a whole portfolio build.
type Kind string

const (
	// KindInvalidStopDistance: zero or negative stop distance reached the
	// sizer. The open is rejected, never silently sized to zero.
	KindInvalidStopDistance Kind = "INVALID_STOP_DISTANCE"

	// KindOrderNotFound: close/update referenced a ticket that is missing
	// or already closed.
	KindOrderNotFound Kind = "ORDER_NOT_FOUND"

	// KindCalendarMismatch: a curve handed to the aggregator has
	// non-monotonic or duplicate dates. The curve is rejected rather than
	// sorted, since silent reordering would hide a data bug.
	KindCalendarMismatch Kind = "CALENDAR_MISMATCH"

	// KindDegenerateCurve: a statistic was requested on a curve with fewer
	// than two points.
	KindDegenerateCurve Kind = "DEGENERATE_CURVE"
)

// EngineError is a categorized error with the component and operation that
// produced it.
type EngineError struct {
	Kind       Kind
	Component  string
	Operation  string
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Kind, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Kind, e.Component, e.Operation, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches two engine errors by kind, so errors.Is works against the
// exported sentinels below.
func (e *EngineError) Is(target error) bool {
	var other *EngineError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidStopDistance = &EngineError{Kind: KindInvalidStopDistance}
	ErrOrderNotFound       = &EngineError{Kind: KindOrderNotFound}
	ErrCalendarMismatch    = &EngineError{Kind: KindCalendarMismatch}
	ErrDegenerateCurve     = &EngineError{Kind: KindDegenerateCurve}
)

// New creates a categorized engine error.
func New(kind Kind, component, operation, message string) *EngineError {
	return &EngineError{
		Kind:      kind,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, component, operation, format string, args ...interface{}) *EngineError {
	return New(kind, component, operation, fmt.Sprintf(format, args...))
}

// Wrap attaches kind and context to an existing error.
func Wrap(err error, kind Kind, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Kind:       kind,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// AbortsPortfolio reports whether the error invalidates a whole portfolio
// build instead of a single bar. Aggregation invariants are global.
func AbortsPortfolio(err error) bool {
	return errors.Is(err, ErrCalendarMismatch) || errors.Is(err, ErrDegenerateCurve)
}
