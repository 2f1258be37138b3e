package errs

import "time"

// now is indirected so tests can pin timestamps, mirroring the clock
// injection pattern used by the circuit breaker.
var now = time.Now
