package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldStage     = "stage"
	FieldComponent = "component"
)

type StringField struct {
	Key   string
	Value string
}

// NonEmpty turns key/value pairs into zap fields. Pairs with a blank key or value are dropped.
func NonEmpty(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to log. A nil log becomes a no-op logger.
func WithFields(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

func AIFields(provider, model string) []zap.Field {
	return NonEmpty(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAI tags every entry of log with the ai provider and model.
func WithAI(log *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(log, AIFields(provider, model)...)
}

// ForStage scopes log to one pipeline stage.
func ForStage(log *zap.Logger, stage string) *zap.Logger {
	return WithFields(log, NonEmpty(StringField{Key: FieldStage, Value: stage})...)
}

func ForComponent(log *zap.Logger, component string) *zap.Logger {
	return WithFields(log, NonEmpty(StringField{Key: FieldComponent, Value: component})...)
}
