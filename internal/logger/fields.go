package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldAttempt is the structured log field key for the analysis attempt id.
	FieldAttempt = "attempt_id"
	// FieldEndpoint is the structured log field key for the scoring service URL.
	FieldEndpoint = "scorer_endpoint"
	// FieldFailureKind separates transport failures from service failures in logs.
	FieldFailureKind = "failure_kind"
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
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AttemptFields returns the fields that identify one analysis attempt.
// Empty values are ignored to keep log entries compact when information is missing.
func AttemptFields(attemptID, endpoint string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAttempt, Value: attemptID},
		StringField{Key: FieldEndpoint, Value: endpoint},
	)
}

// WithAttemptFields attaches the attempt fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithAttemptFields(logger *zap.Logger, attemptID, endpoint string) *zap.Logger {
	return WithFields(logger, AttemptFields(attemptID, endpoint)...)
}
