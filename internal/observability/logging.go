// Package observability carries per-order log context through context.Context.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/webforge/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	OrderID   string
	ClientID  string
	Stage     string
	RequestID string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithOrderID adds an order ID to the context.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	lc := extractLogContext(ctx)
	lc.OrderID = orderID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithClientID adds a client ID to the context. Only a shortened tag of it
// is ever logged.
func WithClientID(ctx context.Context, clientID string) context.Context {
	lc := extractLogContext(ctx)
	lc.ClientID = clientID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", lc.RequestID))
	}
	if lc.OrderID != "" {
		attrs = append(attrs, logfields.OrderID(lc.OrderID))
	}
	if lc.ClientID != "" {
		attrs = append(attrs, logfields.ClientTag(lc.ClientID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}

	return attrs
}

func logAttrs(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	all := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, all...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
