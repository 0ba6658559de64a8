package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fatal, panic).
	Level string

	// Format selects the output encoding: "json", or "console"/"pretty"
	// for human-readable development output.
	Format string

	// Output is the destination stream, "stdout" or "stderr".
	Output string

	// AddSource annotates entries with the caller's file and line.
	AddSource bool

	// TimeFormat is the timestamp layout, RFC3339 when empty.
	TimeFormat string
}

// DefaultLoggingConfig returns the production defaults: info-level JSON on
// stdout.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger builds a zerolog logger from the configuration. The configured
// level is also applied globally so sub-loggers derived elsewhere inherit it.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	var output io.Writer = os.Stdout
	if strings.ToLower(cfg.Output) == "stderr" {
		output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	builder := zerolog.New(output).With().Timestamp()
	if cfg.AddSource {
		builder = builder.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	return builder.Logger().Level(level)
}

// parseLevel maps a level name to zerolog's level, defaulting to info for
// anything unrecognized.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRequestContext derives a logger carrying the request correlation fields.
func WithRequestContext(logger zerolog.Logger, requestID, method, path string) zerolog.Logger {
	return logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger()
}

// WithEntityContext derives a logger bound to one catalog entity.
func WithEntityContext(logger zerolog.Logger, entity string, id int64) zerolog.Logger {
	return logger.With().
		Str("entity", entity).
		Int64("entity_id", id).
		Logger()
}

// WithUploadContext derives a logger bound to one bulk upload file.
func WithUploadContext(logger zerolog.Logger, filename string, sizeBytes int64) zerolog.Logger {
	return logger.With().
		Str("filename", filename).
		Int64("size_bytes", sizeBytes).
		Logger()
}
