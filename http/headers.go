package http

const (
	// HeaderClientID carries the caller assigned client id used to
	// correlate logs across services.
	HeaderClientID = "X-Skissa-Client-Id"

	// HeaderAppKey identifies the application a connection belongs
	// to. It labels session and element metrics.
	HeaderAppKey = "X-Skissa-App-Key"

	// HeaderXForwardedFor is the standard proxy chain header, logged
	// when a client joins a session.
	HeaderXForwardedFor = "X-Forwarded-For"
)
