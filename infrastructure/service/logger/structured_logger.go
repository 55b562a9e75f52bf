package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger interface for structured logging
type Logger interface {
	Info(ctx context.Context, message string, fields map[string]interface{})
	Error(ctx context.Context, message string, err error, fields map[string]interface{})
	Warn(ctx context.Context, message string, fields map[string]interface{})
	Debug(ctx context.Context, message string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

type correlationIDKey struct{}

// WithCorrelationID stores the request correlation ID on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the correlation ID stored on ctx, if any.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// structuredLogger implements Logger on top of logrus
type structuredLogger struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// LoggerConfig configuration for the logger
type LoggerConfig struct {
	Level       string
	Format      string
	ServiceName string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(config LoggerConfig) Logger {
	logrusLogger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrusLogger.SetLevel(level)

	if config.Format == "json" {
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logrusLogger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	}

	if config.Output != nil {
		logrusLogger.SetOutput(config.Output)
	} else {
		logrusLogger.SetOutput(os.Stdout)
	}

	return &structuredLogger{
		logger: logrusLogger,
		fields: map[string]interface{}{
			"service": config.ServiceName,
		},
	}
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() Logger {
	return NewStructuredLogger(LoggerConfig{Level: "panic", Output: io.Discard})
}

func (l *structuredLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(ctx, logrus.InfoLevel, message, nil, fields)
}

func (l *structuredLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	l.log(ctx, logrus.ErrorLevel, message, err, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(ctx, logrus.WarnLevel, message, nil, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(ctx, logrus.DebugLevel, message, nil, fields)
}

// WithFields creates a new logger with additional fields
func (l *structuredLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &structuredLogger{
		logger: l.logger,
		fields: newFields,
	}
}

func (l *structuredLogger) log(ctx context.Context, level logrus.Level, message string, err error, fields map[string]interface{}) {
	if !l.logger.IsLevelEnabled(level) {
		return
	}

	entryFields := logrus.Fields{}
	for k, v := range l.fields {
		entryFields[k] = v
	}
	for k, v := range fields {
		entryFields[k] = v
	}

	if cid := CorrelationID(ctx); cid != "" {
		entryFields["correlation_id"] = cid
	}

	if err != nil {
		entryFields[logrus.ErrorKey] = err.Error()
	}

	// skip log + the exported level method
	if pc, file, line, ok := runtime.Caller(2); ok {
		entryFields["caller"] = fmt.Sprintf("%s:%d %s", file, line, runtime.FuncForPC(pc).Name())
	}

	l.logger.WithFields(entryFields).Log(level, message)
}

// LogPerformance logs the duration of an operation
func LogPerformance(ctx context.Context, logger Logger, operation string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "performance"
	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()
	fields["duration_human"] = duration.String()

	logger.Info(ctx, fmt.Sprintf("Performance: %s took %s", operation, duration), fields)
}

// LogSecurityEvent logs security relevant events at a level derived from severity
func LogSecurityEvent(ctx context.Context, logger Logger, event string, severity string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "security"
	fields["security_event"] = event
	fields["severity"] = severity

	message := fmt.Sprintf("Security event: %s", event)

	switch severity {
	case "HIGH":
		logger.Error(ctx, message, nil, fields)
	case "MEDIUM":
		logger.Warn(ctx, message, fields)
	default:
		logger.Info(ctx, message, fields)
	}
}
