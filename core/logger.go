package core

// Logger handles application logs and ships them to the error tracker when enabled.
// Implementations may inspect args for an error (to attach a stack trace) or a
// logged-in user (to attach the request's person context).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
