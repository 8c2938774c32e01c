// File: internal/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines common logging interface for all layers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// ProductionLogger is a structured logger backed by zerolog.
type ProductionLogger struct {
	zl zerolog.Logger
}

// NewProductionLogger creates a logger for service writing to w.
// structured selects JSON lines; otherwise a human-readable console format is used.
func NewProductionLogger(service string, w io.Writer, level zerolog.Level, structured bool) *ProductionLogger {
	if !structured {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
	return &ProductionLogger{zl: zl}
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.emit(p.zl.Info(), msg, keysAndValues)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.emit(p.zl.Error(), msg, keysAndValues)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.emit(p.zl.Debug(), msg, keysAndValues)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.emit(p.zl.Warn(), msg, keysAndValues)
}

// With returns a child logger that always carries the given pairs.
func (p *ProductionLogger) With(keysAndValues ...interface{}) Logger {
	ctx := p.zl.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ctx = ctx.Interface(keyString(keysAndValues[i]), keysAndValues[i+1])
	}
	return &ProductionLogger{zl: ctx.Logger()}
}

func (p *ProductionLogger) emit(ev *zerolog.Event, msg string, keysAndValues []interface{}) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := keyString(keysAndValues[i])
		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func keyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) With(keysAndValues ...interface{}) Logger       { return n }

// ParseLevel maps LOG_LEVEL values onto zerolog levels. Unknown values mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger is the environment-based logger factory.
// GO_ENV=test silences logging; ENV=production switches to JSON output.
func NewLogger(service, env, level string) Logger {
	if os.Getenv("GO_ENV") == "test" {
		return &NoOpLogger{}
	}
	structured := strings.EqualFold(env, "production")
	return NewProductionLogger(service, os.Stdout, ParseLevel(level), structured)
}
