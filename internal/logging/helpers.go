package logging

import (
	"maps"

	"github.com/goliatone/go-pim/pkg/interfaces"
)

// WithFields returns a child logger carrying fields when the logger supports
// interfaces.FieldsLogger, and the logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
