package service

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	pairs := []any{"service", serviceName, "operation", operation}
	pairs = append(pairs, attrs...)
	return defaultLogger(base).With(pairs...)
}

// logResult writes the outcome line every operation ends with. Poll reads
// succeed at debug level, mutations at info.
func logResult(ctx context.Context, logger *slog.Logger, okLevel slog.Level, err error, failMsg, okMsg string, attrs ...any) {
	if err != nil {
		logger.ErrorContext(ctx, failMsg, "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.Log(ctx, okLevel, okMsg, attrs...)
}
