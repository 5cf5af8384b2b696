package export

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-pim/internal/batch"
	"github.com/goliatone/go-pim/internal/validation"
)

// Job parameter keys read by the quick export.
const (
	ParamScope              = "scope"
	ParamSelectedLocales    = "selected_locales"
	ParamSelectedProperties = "selected_properties"
	ParamWithMedia          = "with_media"
)

const (
	textCodeInvalidConfiguration = "EXPORT_INVALID_CONFIGURATION"
	textCodeInvalidParameters    = "EXPORT_INVALID_PARAMETERS"
)

var ErrInvalidConfiguration = errors.New("export: invalid job configuration")

// InvalidConfigurationError reports a job parameter the export cannot run without.
type InvalidConfigurationError struct {
	Parameter string
	Reason    string
}

func (e *InvalidConfigurationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is required"
	}
	return fmt.Sprintf("export: invalid job configuration: parameter %q %s", e.Parameter, reason)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func invalidConfiguration(parameter, reason string) error {
	err := &InvalidConfigurationError{Parameter: parameter, Reason: reason}
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithTextCode(textCodeInvalidConfiguration)
}

var parametersSchema = validation.NewSchema("quick_export_parameters.json", map[string]any{
	"type": "object",
	"properties": map[string]any{
		ParamScope: map[string]any{"type": []any{"string", "null"}},
		ParamSelectedLocales: map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		ParamSelectedProperties: map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		ParamWithMedia: map[string]any{"type": []any{"boolean", "null"}},
	},
})

// Parameters is the typed view of the quick export job parameters.
type Parameters struct {
	Scope              Optional[string]
	SelectedLocales    Optional[[]string]
	SelectedProperties Optional[[]string]
	WithMedia          bool
}

// ParseParameters validates the job parameters against the export schema and
// extracts them. Missing keys stay absent; the scope requirement is checked
// by RequireScope so it fails per processed item.
func ParseParameters(params batch.JobParameters) (Parameters, error) {
	var out Parameters
	if err := parametersSchema.Validate(params.All()); err != nil {
		return out, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid quick export parameters").
			WithTextCode(textCodeInvalidParameters)
	}

	if scope, ok, err := params.String(ParamScope); err != nil {
		return out, invalidConfiguration(ParamScope, err.Error())
	} else if ok {
		out.Scope = Some(scope)
	}
	if locales, ok, err := params.Strings(ParamSelectedLocales); err != nil {
		return out, invalidConfiguration(ParamSelectedLocales, err.Error())
	} else if ok {
		out.SelectedLocales = Some(locales)
	}
	if properties, ok, err := params.Strings(ParamSelectedProperties); err != nil {
		return out, invalidConfiguration(ParamSelectedProperties, err.Error())
	} else if ok {
		out.SelectedProperties = Some(properties)
	}
	if withMedia, ok, err := params.Bool(ParamWithMedia); err != nil {
		return out, invalidConfiguration(ParamWithMedia, err.Error())
	} else if ok {
		out.WithMedia = withMedia
	}
	return out, nil
}

// RequireScope returns the channel code or an invalid configuration error.
func (p Parameters) RequireScope() (string, error) {
	scope, ok := p.Scope.Get()
	if !ok || strings.TrimSpace(scope) == "" {
		return "", invalidConfiguration(ParamScope, "is required")
	}
	return strings.TrimSpace(scope), nil
}
