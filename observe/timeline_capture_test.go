package observe

import (
	"testing"
	"time"

	"github.com/orrery/resilient/errs"
)

func TestTimelineCapture_ErrAndAttemptsBeforeCompletion(t *testing.T) {
	_, capture := RecordTimeline(nil)
	if capture.Timeline() != nil {
		t.Fatalf("expected nil timeline before completion")
	}
	if capture.Err() != nil {
		t.Fatalf("expected nil Err before completion")
	}
	if capture.Attempts() != nil {
		t.Fatalf("expected nil Attempts before completion")
	}
}

func TestTimelineCapture_ErrAndAttemptsAfterCompletion(t *testing.T) {
	_, capture := RecordTimeline(nil)
	final := &errs.TypedError{Code: "DOWNSTREAM_ERROR"}
	StoreTimelineCapture(capture, &Timeline{
		Start:    time.Now(),
		Attempts: []AttemptRecord{{Attempt: 1, Err: final}},
		FinalErr: final,
	})

	if got := capture.Err(); got != final {
		t.Fatalf("Err() = %v, want %v", got, final)
	}
	if got := capture.Attempts(); len(got) != 1 {
		t.Fatalf("Attempts() = %v, want 1 entry", got)
	}
}

func TestTimelineCapture_Reset(t *testing.T) {
	_, capture := RecordTimeline(nil)
	StoreTimelineCapture(capture, &Timeline{Start: time.Now()})
	if capture.Timeline() == nil {
		t.Fatalf("expected a stored timeline before Reset")
	}

	capture.Reset()
	if capture.Timeline() != nil {
		t.Fatalf("expected nil timeline after Reset")
	}
	if capture.Err() != nil {
		t.Fatalf("expected nil Err after Reset")
	}
}
