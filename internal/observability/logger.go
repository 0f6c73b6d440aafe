// Package observability provides structured logging setup and in-process
// request metrics.
package observability

import (
	"log/slog"
	"os"
)

// Common structured log field names, shared so log queries stay consistent.
const (
	LogFieldRequestID = "request_id"
	LogFieldDuration  = "duration_ms"
	LogFieldErrorCode = "error_code"
	LogFieldOperation = "operation"
)

// NewLogger builds the process logger: JSON output at info level in prod,
// human-readable text at debug level otherwise.
func NewLogger(mode string) *slog.Logger {
	if mode == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
