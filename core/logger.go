package core

import "log"

// Logger logs application events at increasing severity levels.
// Implementations decide how `args` are rendered; a session user passed as an
// arg should be attached to the log entry as the acting identity.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type stdLogger struct {
	std *log.Logger
}

// NewStdLogger returns a Logger writing to std (log.Default() when nil).
// It is the fallback wherever a Logger dependency was not provided.
func NewStdLogger(std *log.Logger) Logger {
	if std == nil {
		std = log.Default()
	}
	return stdLogger{std: std}
}

func (l stdLogger) print(lvl, msg string, args []interface{}) {
	l.std.Printf("%s: %s", lvl, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
