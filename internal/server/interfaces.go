package server

// Server is a transport server of the reference remote service.
type Server interface {
	// RunServer serves until SIGINT/SIGTERM or Shutdown, whichever comes
	// first, and then stops every transport.
	RunServer()

	// Shutdown stops serving. It is safe to call more than once.
	Shutdown()
}
