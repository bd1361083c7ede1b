package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogExpenseRecorded logs a persisted expense write
func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, op string, expenseID, userID, amountCents int64) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(op).
		WithComponent(ComponentExpense).
		ToSlice()

	fields = append(fields, FieldExpenseID, expenseID, FieldAmountCents, amountCents)

	sl.logger.InfoContext(ctx, "Expense recorded", fields...)
}

// LogAlert logs a warning or breach produced by an evaluation
func (sl *StructuredLogger) LogAlert(ctx context.Context, userID, thresholdID int64, categoryID *int64, kind string, limitCents, spendingCents int64, usagePct float64) {
	fields := NewFields().
		WithUser(userID).
		WithThreshold(thresholdID, categoryID, limitCents).
		WithUsage(spendingCents, usagePct).
		WithOperation(OpEvaluate).
		WithComponent(ComponentAlerts)
	fields[FieldAlertKind] = kind

	sl.logger.InfoContext(ctx, "Threshold alert", fields.ToSlice()...)
}

// LogBreachTransition logs a persisted change of a threshold's breach flag
func (sl *StructuredLogger) LogBreachTransition(ctx context.Context, userID, thresholdID int64, breached bool) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpUpdate).
		WithComponent(ComponentAlerts)
	fields[FieldThresholdID] = thresholdID
	fields[FieldBreached] = breached

	msg := "Threshold breach cleared"
	if breached {
		msg = "Threshold breached"
	}
	sl.logger.WarnContext(ctx, msg, fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}