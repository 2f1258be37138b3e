package errs

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrAttemptTimeout is the sentinel error the engine surfaces when an
// attempt is cancelled by its own per-attempt timeout rather than by the
// caller's context.
var ErrAttemptTimeout = errors.New("errs: attempt timed out")

// HTTPStatusCoder lets the HTTP built-in rule recognize transport errors
// without this package importing net/http or grpc.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
	HTTPMethod() string
	RetryAfter() (time.Duration, bool)
}

func typedRule() Rule {
	return ruleFunc{
		code: "",
		match: func(v any) (*TypedError, bool) {
			if te, ok := v.(*TypedError); ok {
				return te, true
			}
			return nil, false
		},
	}
}

func abortRule() Rule {
	return When(func(v any) bool {
		err, ok := v.(error)
		return ok && errors.Is(err, context.Canceled)
	}).ToCode(CodeAborted).With(func(v any) *TypedError {
		return &TypedError{Message: "operation aborted", Retryable: false}
	})
}

func timeoutRule() Rule {
	return When(func(v any) bool {
		err, ok := v.(error)
		return ok && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrAttemptTimeout))
	}).ToCode(CodeTimeout).With(func(v any) *TypedError {
		return &TypedError{Message: "attempt timed out", Retryable: true}
	})
}

func httpRule() Rule {
	return When(func(v any) bool {
		err, ok := v.(error)
		if !ok {
			return false
		}
		he, ok := err.(HTTPStatusCoder)
		return ok && he.HTTPStatusCode() >= 400
	}).ToCode(CodeHTTP).With(func(v any) *TypedError {
		he := v.(HTTPStatusCoder)
		status := he.HTTPStatusCode()
		retryable := status >= 500 || status == 429
		meta := map[string]any{"status": status, "method": he.HTTPMethod()}
		if d, ok := he.RetryAfter(); ok && d > 0 {
			meta["retryAfter"] = d
		}
		return &TypedError{
			Message:   "http error " + strconv.Itoa(status),
			Status:    &status,
			Meta:      meta,
			Retryable: retryable,
		}
	})
}

var networkErrnos = map[syscall.Errno]bool{
	syscall.ECONNRESET:  true,
	syscall.ECONNREFUSED: true,
	syscall.ETIMEDOUT:   true,
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && networkErrnos[errno] {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "network") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

func networkRule() Rule {
	return When(func(v any) bool {
		err, ok := v.(error)
		return ok && isNetworkError(err)
	}).ToCode(CodeNetwork).With(func(v any) *TypedError {
		return &TypedError{Message: v.(error).Error(), Retryable: true}
	})
}

// CircuitOpenError is returned (wrapped in a TypedError) when the breaker
// rejects an attempt without invoking the task.
type CircuitOpenError struct {
	NextAttempt time.Time
}

func (e CircuitOpenError) Error() string { return "circuit breaker is open" }

func circuitOpenRule() Rule {
	return Instance[CircuitOpenError]().ToCode(CodeCircuitOpen).With(func(v any) *TypedError {
		ce := v.(CircuitOpenError)
		return &TypedError{
			Message:   "circuit breaker is open",
			Meta:      map[string]any{"nextAttempt": ce.NextAttempt},
			Retryable: false,
		}
	})
}

// BudgetExceededError is returned (wrapped in a TypedError) when the
// admission budget rejects an attempt.
type BudgetExceededError struct {
	Reason string
}

func (e BudgetExceededError) Error() string { return "admission budget exceeded: " + e.Reason }

func budgetRule() Rule {
	return Instance[BudgetExceededError]().ToCode(CodeBudgetExceeded).With(func(v any) *TypedError {
		be := v.(BudgetExceededError)
		return &TypedError{Message: be.Error(), Meta: map[string]any{"reason": be.Reason}, Retryable: true}
	})
}

// ValidationError marks configuration or input errors the caller should fix
// rather than retry.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string { return "validation: " + e.Field + ": " + e.Msg }

func validationRule() Rule {
	return Instance[ValidationError]().ToCode(CodeValidation).With(func(v any) *TypedError {
		ve := v.(ValidationError)
		return &TypedError{Message: ve.Error(), Path: &ve.Field, Retryable: false}
	})
}

func unknownRule() Rule {
	return ruleFunc{
		code: CodeUnknown,
		match: func(v any) (*TypedError, bool) {
			te := &TypedError{Code: CodeUnknown, Retryable: true, Raw: v, Timestamp: now()}
			if err, ok := v.(error); ok {
				te.Cause = err
				te.Message = err.Error()
			} else {
				te.Message = "non-error value raised"
			}
			return te, true
		},
	}
}

// Builtins returns the default rule chain in priority order, excluding the
// always-matching fallback (use Normalizer, which appends it automatically).
func Builtins() []Rule {
	return []Rule{
		typedRule(),
		abortRule(),
		timeoutRule(),
		httpRule(),
		networkRule(),
		circuitOpenRule(),
		budgetRule(),
		validationRule(),
	}
}
