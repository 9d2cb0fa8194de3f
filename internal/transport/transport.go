package transport

// Transport is the renderer-facing fan-out for analysis results.
// Implementations must be safe for concurrent use and must not block the
// caller beyond a bounded enqueue.
type Transport interface {
	Send(data any) error
	Close() error
}
