package config

// Log levels accepted by LoggerSettings. Critical logs like error.
const (
	LogLevelDebug    = "debug"
	LogLevelInfo     = "info"
	LogLevelWarning  = "warning"
	LogLevelError    = "error"
	LogLevelCritical = "critical"
)

// Log sinks. File logs rotate through lumberjack.
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)
