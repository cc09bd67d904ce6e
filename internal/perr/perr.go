// Package perr defines the error kinds used throughout the PRINS pipeline
// (see spec §7 ERROR HANDLING DESIGN): StructuralError (fatal),
// LearnerError (per-component recoverable), DeterminizationTimeout
// (recoverable), and TraceRejected (per-trace recoverable).
//
// The shape is modeled directly on server/serr.Error in the teacher repo: a
// single Error type carrying a Kind, a message, and zero or more wrapped
// causes, matched against package-level sentinel values with errors.Is
// rather than type assertions.
package perr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error per the propagation policy in spec §7.
type Kind int

const (
	// KindStructural marks a fatal error that aborts the whole pipeline.
	KindStructural Kind = iota
	// KindLearner marks a per-component recoverable error.
	KindLearner
	// KindDeterminizationTimeout marks a recoverable determinization error.
	KindDeterminizationTimeout
	// KindTraceRejected marks a per-trace recoverable error.
	KindTraceRejected
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindLearner:
		return "learner"
	case KindDeterminizationTimeout:
		return "determinization-timeout"
	case KindTraceRejected:
		return "trace-rejected"
	default:
		return "unknown"
	}
}

// Sentinel values for use with errors.Is. Concrete Errors wrap one of these
// as part of their cause chain so callers can classify without a type
// assertion.
var (
	ErrStructural             = errors.New("structural error")
	ErrLearnerTimeout         = errors.New("complearner invocation timed out")
	ErrLearnerFailed          = errors.New("complearner invocation failed")
	ErrDeterminizationTimeout = errors.New("determinization exceeded its wall-clock budget")
	ErrTraceRejected          = errors.New("trace rejected: no guarded transition matched, even with guards ignored")
)

// Error is the concrete error type returned by pipeline components. It
// carries a classification Kind, a human-readable message, and the causes
// that led to it (which may include one of the package sentinels above).
type Error struct {
	Kind    Kind
	Message string
	cause   []error
}

// New creates an Error of the given kind with the given message and causes.
func New(kind Kind, message string, cause ...error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Structuralf builds a fatal StructuralError, wrapping ErrStructural.
func Structuralf(format string, args ...any) *Error {
	return New(KindStructural, fmt.Sprintf(format, args...), ErrStructural)
}

// LearnerErrorf builds a per-component recoverable LearnerError.
func LearnerErrorf(cause error, format string, args ...any) *Error {
	return New(KindLearner, fmt.Sprintf(format, args...), ErrLearnerFailed, cause)
}

// DeterminizationTimeoutf builds a recoverable DeterminizationTimeout error.
func DeterminizationTimeoutf(format string, args ...any) *Error {
	return New(KindDeterminizationTimeout, fmt.Sprintf(format, args...), ErrDeterminizationTimeout)
}

// TraceRejectedf builds a per-trace recoverable TraceRejected error.
func TraceRejectedf(format string, args ...any) *Error {
	return New(KindTraceRejected, fmt.Sprintf(format, args...), ErrTraceRejected)
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the causes of e, for use with errors.Is/errors.As.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether errors.Is matches target against any of e's causes
// (identity with e itself is left to errors.Is); it does not implement
// Kind-based matching so that
// errors.Is(err, ErrStructural) and similar sentinel checks are the
// canonical way calling code classifies an error.
func (e *Error) Is(target error) bool {
	for _, c := range e.cause {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

// Fatal reports whether an error's Kind makes it abort the whole pipeline
// per the propagation policy in spec §7.
func Fatal(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == KindStructural
	}
	return false
}
