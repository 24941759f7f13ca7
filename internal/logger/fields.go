package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the completion provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the completion model identifier.
	FieldModel = "ai_model"
	// FieldPlatform is the structured log field key for the job board platform.
	FieldPlatform = "platform"
	// FieldJobID is the structured log field key for the derived job identity.
	FieldJobID = "job_id"
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

// WithFields safely attaches the provided fields to the logger.
// A nil logger defaults to a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CompletionFields returns the standard fields describing a completion backend.
// Empty values are ignored to keep log entries compact.
func CompletionFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// JobFields returns the standard fields identifying a job on a platform.
func JobFields(platform, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPlatform, Value: platform},
		StringField{Key: FieldJobID, Value: jobID},
	)
}
