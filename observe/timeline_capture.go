package observe

import (
	"context"
	"sync/atomic"

	"github.com/orrery/resilient/errs"
)

// TimelineCapture holds a captured timeline after execution completes.
//
// Timeline() returns nil until the call completes (or if capture is not used).
// A single capture is safe to pass into RecordTimeline's derived context and
// then reuse across several sequential calls via Reset — it is the pointer
// stored inside that gets replaced on each completion, not the capture
// itself, so callers holding onto it never see a stale reference.
type TimelineCapture struct {
	tl atomic.Pointer[Timeline]
}

// Timeline returns the captured timeline, or nil if not yet populated.
// It is thread-safe.
func (c *TimelineCapture) Timeline() *Timeline {
	if c == nil {
		return nil
	}
	return c.tl.Load()
}

// Err returns the captured timeline's final error, or nil when the call
// hasn't completed yet, capture was never requested, or the call succeeded.
func (c *TimelineCapture) Err() *errs.TypedError {
	tl := c.Timeline()
	if tl == nil {
		return nil
	}
	return tl.FinalErr
}

// Attempts returns the captured timeline's attempt records, or nil when
// nothing has been captured yet.
func (c *TimelineCapture) Attempts() []AttemptRecord {
	tl := c.Timeline()
	if tl == nil {
		return nil
	}
	return tl.Attempts
}

// Reset clears a previously captured timeline so the same capture handle
// can be threaded through a fresh call — a caller looping Run over a batch
// of inputs with WithHooks-style per-call inspection can reuse one capture
// instead of calling RecordTimeline again for every iteration.
func (c *TimelineCapture) Reset() {
	if c == nil {
		return
	}
	c.tl.Store(nil)
}

// store is used by the retry executor to publish the finished timeline.
// unexported to discourage direct mutation.
// Use StoreTimelineCapture to set this from other packages.
func (c *TimelineCapture) store(tl *Timeline) {
	if c == nil || tl == nil {
		return
	}
	c.tl.Store(tl)
}

type timelineCaptureKey struct{}

// RecordTimeline returns a derived context that requests timeline capture for the next call,
// plus a holder for retrieving the completed timeline.
func RecordTimeline(ctx context.Context) (context.Context, *TimelineCapture) {
	if ctx == nil {
		ctx = context.Background()
	}
	capture := &TimelineCapture{}
	return context.WithValue(ctx, timelineCaptureKey{}, capture), capture
}

// TimelineCaptureFromContext returns the capture (if requested).
//
// This is primarily used by the retry executor.
func TimelineCaptureFromContext(ctx context.Context) (*TimelineCapture, bool) {
	if ctx == nil {
		return nil, false
	}
	switch v := ctx.Value(timelineCaptureKey{}).(type) {
	case *TimelineCapture:
		return v, v != nil
	default:
		return nil, false
	}
}

type disabledTimelineCapture struct{}

// WithoutTimelineCapture disables timeline capture in derived contexts.
//
// The retry executor should use this when constructing the per-attempt context passed to op,
// to prevent nested calls from accidentally reusing the same capture.
func WithoutTimelineCapture(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, timelineCaptureKey{}, disabledTimelineCapture{})
}

// StoreTimelineCapture publishes the finished timeline into the capture.
//
// This is primarily used by the retry executor.
func StoreTimelineCapture(capture *TimelineCapture, tl *Timeline) {
	if capture == nil {
		return
	}
	capture.store(tl)
}
