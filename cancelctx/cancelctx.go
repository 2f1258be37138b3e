// Package cancelctx composes cancellation sources that are not already
// related by context parentage. context.WithCancel handles the common
// one-parent case for free; this package covers the engine's actual need:
// stitching the caller's context together with an independently created
// per-attempt timeout context, so either one tripping cancels the merged
// context.
package cancelctx

import "context"

// Merge returns a context that is Done as soon as parent or any of extra is
// Done, along with a cleanup function. cleanup must be called on every exit
// path (typically via defer) to stop the internal watcher goroutine; it is
// idempotent and safe to call more than once.
func Merge(parent context.Context, extra ...context.Context) (context.Context, func()) {
	if len(extra) == 0 {
		return parent, func() {}
	}

	merged, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		cases := make([]context.Context, 0, len(extra))
		cases = append(cases, extra...)
		watch(merged, cases, cancel)
	}()

	cleanup := func() {
		cancel()
		<-done
	}
	return merged, cleanup
}

// watch blocks until merged is Done (because the caller cancelled it, or
// Merge's own cancel was invoked) or one of sources fires first, in which
// case it cancels merged too.
func watch(merged context.Context, sources []context.Context, cancel context.CancelFunc) {
	if len(sources) == 0 {
		<-merged.Done()
		return
	}
	// A select needs a static case list; fall back to a small fan-in
	// goroutine per extra source when there's more than one, which keeps
	// the common (single extra context) path allocation-free.
	if len(sources) == 1 {
		select {
		case <-merged.Done():
		case <-sources[0].Done():
			cancel()
		}
		return
	}

	fired := make(chan struct{}, len(sources))
	stop := make(chan struct{})
	defer close(stop)
	for _, s := range sources {
		s := s
		go func() {
			select {
			case <-s.Done():
				select {
				case fired <- struct{}{}:
				case <-stop:
				}
			case <-stop:
			}
		}()
	}
	select {
	case <-merged.Done():
	case <-fired:
		cancel()
	}
}
