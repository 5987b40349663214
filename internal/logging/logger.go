// Package logging provides structured logging with log levels and correlation IDs.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	fieldsKey        contextKey = "log_fields"
)

// Logger is a structured logger with level support.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	level  Level
	json   bool
	fields map[string]interface{}
}

// Entry represents a single log entry in JSON output.
type Entry struct {
	Timestamp     string                 `json:"ts"`
	Level         string                 `json:"level"`
	Message       string                 `json:"msg"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

var defaultLogger = New()

// New creates a new logger with settings taken from LOG_LEVEL/LOG_FORMAT.
func New() *Logger {
	level := LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level = ParseLevel(lvl)
	}

	return &Logger{
		output: os.Stderr,
		level:  level,
		json:   os.Getenv("LOG_FORMAT") == "json",
		fields: make(map[string]interface{}),
	}
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetJSON enables or disables JSON output format.
func (l *Logger) SetJSON(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = enabled
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &Logger{output: l.output, level: l.level, json: l.json, fields: newFields}
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{output: l.output, level: l.level, json: l.json, fields: newFields}
}

func (l *Logger) log(ctx context.Context, level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	var correlationID string
	if ctx != nil {
		if id, ok := ctx.Value(correlationIDKey).(string); ok {
			correlationID = id
		}
	}

	allFields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	if ctx != nil {
		if ctxFields, ok := ctx.Value(fieldsKey).(map[string]interface{}); ok {
			for k, v := range ctxFields {
				allFields[k] = v
			}
		}
	}

	if l.json {
		entry := Entry{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Level:         level.String(),
			Message:       msg,
			CorrelationID: correlationID,
		}
		if len(allFields) > 0 {
			entry.Fields = allFields
		}

		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.output, "ERROR: failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(l.output, string(data))
		return
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")
	var parts []string

	if correlationID != "" {
		parts = append(parts, fmt.Sprintf("[%s]", shortID(correlationID)))
	}
	parts = append(parts, fmt.Sprintf("[%s]", level.String()))
	parts = append(parts, msg)

	if len(allFields) > 0 {
		fieldParts := make([]string, 0, len(allFields))
		for k, v := range allFields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, ", ")))
	}

	fmt.Fprintf(l.output, "%s %s\n", timestamp, strings.Join(parts, " "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(context.Background(), LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(context.Background(), LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(context.Background(), LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(context.Background(), LevelError, format, args...) }

func (l *Logger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelDebug, format, args...)
}
func (l *Logger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelInfo, format, args...)
}
func (l *Logger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelWarn, format, args...)
}
func (l *Logger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelError, format, args...)
}

// --- Context helpers ---

// NewCorrelationID generates a fresh correlation ID for a run.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogFields returns a new context with additional log fields merged in.
func WithLogFields(ctx context.Context, fields map[string]interface{}) context.Context {
	existing := make(map[string]interface{})
	if ctxFields, ok := ctx.Value(fieldsKey).(map[string]interface{}); ok {
		for k, v := range ctxFields {
			existing[k] = v
		}
	}
	for k, v := range fields {
		existing[k] = v
	}
	return context.WithValue(ctx, fieldsKey, existing)
}

// --- Package-level functions using the default logger ---

// Default returns the default logger.
func Default() *Logger { return defaultLogger }

// SetDefault sets the default logger.
func SetDefault(l *Logger) { defaultLogger = l }

func Debug(format string, args ...interface{}) { defaultLogger.log(context.Background(), LevelDebug, format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.log(context.Background(), LevelInfo, format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.log(context.Background(), LevelWarn, format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.log(context.Background(), LevelError, format, args...) }

func DebugContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelDebug, format, args...)
}
func InfoContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelInfo, format, args...)
}
func WarnContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelWarn, format, args...)
}
func ErrorContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelError, format, args...)
}
