package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyChatID    contextKey = "chat_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithChatID adds the originating chat to the context
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, ContextKeyChatID, chatID)
}

// ChatIDFromContext extracts the chat ID from context, zero when absent
func ChatIDFromContext(ctx context.Context) int64 {
	if chatID, ok := ctx.Value(ContextKeyChatID).(int64); ok {
		return chatID
	}
	return 0
}
