// Package status implements the operator API of the sync client.
//
// It reports connection metrics, breaker state, queue depth and pending
// conflicts, accepts operator commands (reset the breaker, sync now, probe
// now, resolve a conflict, change a collection strategy), streams engine
// events over a WebSocket and serves Prometheus metrics.
package status
