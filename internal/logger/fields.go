package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldChat is the structured log field key for the chat identifier.
	FieldChat = "chat_id"
	// FieldSource is the structured log field key for the job board tag.
	FieldSource = "source"
	// FieldTrace is the structured log field key for the per-update trace id.
	FieldTrace = "trace_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithChat attaches the chat identifier.
func WithChat(logger *zap.Logger, chatID int64) *zap.Logger {
	return WithFields(logger, zap.Int64(FieldChat, chatID))
}

// WithSource attaches the job board tag. Empty tags are ignored.
func WithSource(logger *zap.Logger, source string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldSource, Value: source})...)
}

// WithTrace attaches the trace id of the update being handled.
func WithTrace(logger *zap.Logger, traceID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldTrace, Value: traceID})...)
}
