package domain

// Logger defines the interface for logging. Key-value pairs follow the
// message, alternating key and value.
type Logger interface {
	Debug(message string, keysAndValues ...any)
	Info(message string, keysAndValues ...any)
	Error(message string, keysAndValues ...any)
}
