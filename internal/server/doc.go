// Package server runs the transports of the reference remote data service.
//
// It owns the lifecycle of the REST server and the gRPC health server:
// startup, signal handling and graceful shutdown of every enabled transport.
package server
