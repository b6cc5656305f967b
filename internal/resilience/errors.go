package resilience

import "errors"

// ErrCircuitOpen is returned without invoking the guarded call while the
// breaker is open, or while a half-open trial is already in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")
