// Package transporthttp adapts net/http requests onto the engine: request
// cloning and replay for each attempt, response-body draining between
// retries, and a StatusError that the errs HTTP rule already recognizes.
package transporthttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/orrery/resilient/engine"
)

// Do executes req through eng, cloning it (and replaying its body, via
// GetBody) on every attempt. req.Body must be replayable whenever it is
// non-empty: either GetBody is set, or the body is http.NoBody.
func Do(ctx context.Context, eng *engine.Engine, client *http.Client, req *http.Request, opts ...engine.Option) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return nil, errors.New("transporthttp: request body is not replayable (GetBody is nil)")
	}

	task := func(ctx context.Context) (*http.Response, error) {
		outReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			outReq.Body = body
		}

		resp, err := client.Do(outReq)
		if err != nil {
			return nil, &StatusError{Err: err, Method: req.Method}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		// Drain a bounded prefix of the error body so the connection can be
		// reused, then close it; the caller only gets a StatusError.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		resp.Body.Close()

		return nil, &StatusError{Code: resp.StatusCode, Method: req.Method, Header: resp.Header}
	}

	return engine.RunOrThrow(ctx, eng, task, opts...)
}

// StatusError satisfies errs.HTTPStatusCoder so the normalizer's built-in
// HTTP rule classifies it (5xx and 429 retryable, everything else not)
// without transporthttp importing the errs package at all.
type StatusError struct {
	Code   int
	Method string
	Header http.Header
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "http status " + strconv.Itoa(e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.Code }
func (e *StatusError) HTTPMethod() string  { return e.Method }

func (e *StatusError) RetryAfter() (time.Duration, bool) {
	if e.Header == nil {
		return 0, false
	}
	s := e.Header.Get("Retry-After")
	if s == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(s); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
