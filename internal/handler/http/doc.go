// Package http implements the REST transport of the reference remote data
// service.
//
// It exposes route wiring, the collection handlers and the middleware chain
// in front of them. Bearer authentication, request tracing, access logging,
// body integrity checks and response compression are handled here before
// requests are delegated to the service layer.
package http
