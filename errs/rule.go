package errs

// Rule inspects a raw value (an error, or any panic value recovered by a
// caller) and either declines or produces a TypedError.
type Rule interface {
	// Match returns the typed error and true if this rule applies to v.
	Match(v any) (*TypedError, bool)
	// Code reports the error code this rule statically produces, or ""
	// if the code depends on v and cannot be known up front. Rules that
	// report a non-empty Code are checked for duplicates at construction.
	Code() string
}

type ruleFunc struct {
	code  string
	match func(v any) (*TypedError, bool)
}

func (r ruleFunc) Match(v any) (*TypedError, bool) { return r.match(v) }
func (r ruleFunc) Code() string                    { return r.code }

// predicateBuilder is the fluent entry point produced by When.
type predicateBuilder struct {
	pred func(v any) bool
}

// When starts a rule declaration: the rule applies only when pred(v) is true.
func When(pred func(v any) bool) predicateBuilder {
	return predicateBuilder{pred: pred}
}

// ToError finishes the rule with a full mapper; the rule's static Code is
// unknown (mapper decides it), so duplicate-code detection cannot catch
// collisions produced this way.
func (b predicateBuilder) ToError(mapper func(v any) *TypedError) Rule {
	pred, m := b.pred, mapper
	return ruleFunc{
		code: "",
		match: func(v any) (*TypedError, bool) {
			if !pred(v) {
				return nil, false
			}
			te := m(v)
			if te == nil {
				return nil, false
			}
			if te.Timestamp.IsZero() {
				te.Timestamp = now()
			}
			return te, true
		},
	}
}

// codeBuilder is the fluent step after ToCode.
type codeBuilder struct {
	pred func(v any) bool
	code string
}

// ToCode declares the rule's static code, enabling duplicate-code detection.
func (b predicateBuilder) ToCode(code string) codeBuilder {
	return codeBuilder{pred: b.pred, code: code}
}

// With finishes the rule: body fills in everything but Code (and, when left
// nil, Cause/Raw default to the original input).
func (b codeBuilder) With(body func(v any) *TypedError) Rule {
	pred, code, fn := b.pred, b.code, body
	return ruleFunc{
		code: code,
		match: func(v any) (*TypedError, bool) {
			if !pred(v) {
				return nil, false
			}
			te := fn(v)
			if te == nil {
				te = &TypedError{}
			}
			te.Code = code
			if te.Cause == nil {
				if err, ok := v.(error); ok {
					te.Cause = err
				}
			}
			if te.Raw == nil {
				te.Raw = v
			}
			if te.Timestamp.IsZero() {
				te.Timestamp = now()
			}
			return te, true
		},
	}
}

// Instance builds a predicate matching any value assignable to E, with
// optional chaining into ToError/ToCode for a custom mapper. Absent a
// chained mapper, Build introspects the matched value via Coder, Retryabler,
// Statuser, Pather, Titler.
func Instance[E error]() instanceBuilder[E] {
	return instanceBuilder[E]{}
}

type instanceBuilder[E error] struct{}

func (instanceBuilder[E]) pred() func(v any) bool {
	return func(v any) bool {
		_, ok := v.(E)
		return ok
	}
}

func (b instanceBuilder[E]) ToError(mapper func(v any) *TypedError) Rule {
	return When(b.pred()).ToError(mapper)
}

func (b instanceBuilder[E]) ToCode(code string) codeBuilder {
	return When(b.pred()).ToCode(code)
}

// Build constructs the rule using only introspection of optional interfaces,
// defaulting Retryable to true and Code to CodeUnknown when E implements
// neither Coder.
func (b instanceBuilder[E]) Build() Rule {
	pred := b.pred()
	return ruleFunc{
		code: "",
		match: func(v any) (*TypedError, bool) {
			if !pred(v) {
				return nil, false
			}
			te := &TypedError{Code: CodeUnknown, Retryable: true, Timestamp: now()}
			if err, ok := v.(error); ok {
				te.Cause = err
				te.Message = err.Error()
			}
			te.Raw = v
			if c, ok := v.(Coder); ok {
				te.Code = c.ErrCode()
			}
			if r, ok := v.(Retryabler); ok {
				te.Retryable = r.IsRetryable()
			}
			if s, ok := v.(Statuser); ok {
				status := s.StatusCode()
				te.Status = &status
			}
			if p, ok := v.(Pather); ok {
				path := p.ErrPath()
				te.Path = &path
			}
			if t, ok := v.(Titler); ok {
				title := t.ErrTitle()
				te.Title = &title
			}
			return te, true
		},
	}
}
