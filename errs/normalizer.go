package errs

import (
	"fmt"

	"github.com/orrery/resilient/internal"
)

// Mode controls how user rules combine with the built-in rule set.
type Mode int

const (
	// Extend tries user rules first, then the built-ins. This is the default.
	Extend Mode = iota
	// Replace uses only the user rules, skipping the built-ins entirely.
	Replace
)

// DuplicateCodeError is returned by NewNormalizer when two rules in the
// merged chain statically declare the same code.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("errs: duplicate rule code %q", e.Code)
}

// Normalizer turns any raw value into a *TypedError. It is total: Normalize
// never returns nil.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer merges userRules with the built-ins per mode and appends the
// always-matching fallback. It rejects construction if two rules declare the
// same static code.
func NewNormalizer(userRules []Rule, mode Mode) (*Normalizer, error) {
	var chain []Rule
	chain = append(chain, userRules...)
	if mode != Replace {
		chain = append(chain, Builtins()...)
	}

	seen := make(map[string]bool, len(chain))
	for _, r := range chain {
		code := r.Code()
		if code == "" {
			continue
		}
		if seen[code] {
			return nil, &DuplicateCodeError{Code: code}
		}
		seen[code] = true
	}

	chain = append(chain, unknownRule())
	return &Normalizer{rules: chain}, nil
}

// Normalize is total: it always returns a non-nil *TypedError.
func (n *Normalizer) Normalize(v any) *TypedError {
	if n == nil {
		nop, _ := NewNormalizer(nil, Extend)
		return nop.Normalize(v)
	}
	if internal.IsTypedNil(v) {
		return &TypedError{Code: CodeUnknown, Message: "nil error normalized", Retryable: true, Timestamp: now()}
	}
	for _, r := range n.rules {
		if te, ok := r.Match(v); ok {
			if te.Timestamp.IsZero() {
				te.Timestamp = now()
			}
			return te
		}
	}
	// unreachable: unknownRule always matches.
	return &TypedError{Code: CodeUnknown, Raw: v, Timestamp: now()}
}
