package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-pim/pkg/interfaces"
)

const (
	rootModule         = "pim"
	catalogModule      = "pim.catalog"
	completenessModule = "pim.completeness"
	exportModule       = "pim.export"
	mediaModule        = "pim.media"
	jobsModule         = "pim.jobs"
	commandsModule     = "pim.commands"
)

const (
	fieldJobCode  = "job_code"
	fieldJobUser  = "job_user"
	fieldStepName = "step"
)

// ModuleLogger resolves the logger registered for module and tags every entry
// with a "module" field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

func CompletenessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, completenessModule)
}

func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

func JobsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, jobsModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithJobContext adds the job code, step name and job user to the logger.
// Blank values are skipped.
func WithJobContext(logger interfaces.Logger, jobCode, step, user string) interfaces.Logger {
	fields := map[string]any{}
	for key, value := range map[string]string{
		fieldJobCode:  jobCode,
		fieldStepName: step,
		fieldJobUser:  user,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
