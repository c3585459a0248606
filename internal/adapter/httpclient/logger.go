package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger provides structured logging for remote API calls and pipeline events.
type Logger interface {
	// LogCall logs a completed API call with timing information.
	LogCall(ctx context.Context, call CallLog)

	// LogError logs a failed API call.
	LogError(ctx context.Context, errLog ErrorLog)

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})

	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// CallLog contains information about a completed API call.
type CallLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	StatusCode int
}

// ErrorLog contains information about a failed API call.
type ErrorLog struct {
	Service    string
	Method     string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	StatusCode int
	Retryable  bool
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes structured logs via the standard log package.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		format: format,
	}
}

// LogCall logs a completed API call.
func (l *DefaultLogger) LogCall(ctx context.Context, call CallLog) {
	if l.level > LogLevelDebug {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"debug","type":"api_call","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"status_code":%d}`,
			call.Service, call.Method, call.Path,
			call.Timestamp.Format(time.RFC3339), call.Duration.Milliseconds(), call.StatusCode)
	} else {
		log.Printf("[DEBUG] %s: %s %s -> %d (%.1fs)",
			call.Service, call.Method, call.Path, call.StatusCode, call.Duration.Seconds())
	}
}

// LogError logs a failed API call.
func (l *DefaultLogger) LogError(ctx context.Context, errLog ErrorLog) {
	if l.level > LogLevelError {
		return
	}

	retryableStr := "non-retryable"
	if errLog.Retryable {
		retryableStr = "retryable"
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"api_error","service":"%s","method":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"error":"%s","status_code":%d,"retryable":%t}`,
			errLog.Service, errLog.Method, errLog.Path,
			errLog.Timestamp.Format(time.RFC3339), errLog.Duration.Milliseconds(),
			errLog.Error.Error(), errLog.StatusCode, errLog.Retryable)
	} else {
		log.Printf("[ERROR] %s: %s %s failed (status=%d, %s): %v",
			errLog.Service, errLog.Method, errLog.Path, errLog.StatusCode, retryableStr, errLog.Error)
	}
}

// LogInfo logs an informational message with structured fields.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.logMessage("info", "[INFO]", message, fields)
}

// LogWarning logs a warning message with structured fields.
// Warnings are emitted at every log level.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logMessage("warning", "[WARN]", message, fields)
}

func (l *DefaultLogger) logMessage(jsonLevel, humanPrefix, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     jsonLevel,
			"message":   message,
			"timestamp": time.Now().Format(time.RFC3339),
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"%s","message":"%s"}`, jsonLevel, message)
			return
		}
		log.Print(string(data))
		return
	}

	if len(fields) == 0 {
		log.Printf("%s %s", humanPrefix, message)
		return
	}

	// Sort field keys for deterministic output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	log.Printf("%s %s (%s)", humanPrefix, message, strings.Join(pairs, ", "))
}
