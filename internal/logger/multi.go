package logger

// Leveled is the logging surface shared by ConsoleLogger and FileLogger.
type Leveled interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Multi forwards every message to each wrapped logger. Nil entries are skipped.
type Multi []Leveled

// NewMulti builds a Multi, dropping nil loggers.
func NewMulti(loggers ...Leveled) Multi {
	m := make(Multi, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

// LogTrace logs a trace-level message to every logger.
func (m Multi) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

// LogDebug logs a debug-level message to every logger.
func (m Multi) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

// LogInfo logs an info-level message to every logger.
func (m Multi) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

// LogWarn logs a warning-level message to every logger.
func (m Multi) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

// LogError logs an error-level message to every logger.
func (m Multi) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}
