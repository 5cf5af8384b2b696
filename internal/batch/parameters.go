package batch

import (
	"fmt"
	"maps"
)

// JobParameters holds the string-keyed configuration of a job instance.
// A key mapped to nil is treated as absent.
type JobParameters struct {
	raw map[string]any
}

// NewJobParameters copies the raw configuration.
func NewJobParameters(raw map[string]any) JobParameters {
	return JobParameters{raw: maps.Clone(raw)}
}

// Has reports whether the parameter is set to a non-nil value.
func (p JobParameters) Has(key string) bool {
	value, ok := p.raw[key]
	return ok && value != nil
}

// Get returns the raw parameter value.
func (p JobParameters) Get(key string) (any, bool) {
	if !p.Has(key) {
		return nil, false
	}
	return p.raw[key], true
}

// String returns a string parameter.
func (p JobParameters) String(key string) (string, bool, error) {
	value, ok := p.Get(key)
	if !ok {
		return "", false, nil
	}
	typed, ok := value.(string)
	if !ok {
		return "", true, fmt.Errorf("batch: parameter %s must be a string, got %T", key, value)
	}
	return typed, true, nil
}

// Strings returns a list parameter. JSON decoded lists arrive as []any.
func (p JobParameters) Strings(key string) ([]string, bool, error) {
	value, ok := p.Get(key)
	if !ok {
		return nil, false, nil
	}
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...), true, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, true, fmt.Errorf("batch: parameter %s must hold strings, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, true, nil
	default:
		return nil, true, fmt.Errorf("batch: parameter %s must be a list, got %T", key, value)
	}
}

// Bool returns a boolean parameter.
func (p JobParameters) Bool(key string) (bool, bool, error) {
	value, ok := p.Get(key)
	if !ok {
		return false, false, nil
	}
	typed, ok := value.(bool)
	if !ok {
		return false, true, fmt.Errorf("batch: parameter %s must be a boolean, got %T", key, value)
	}
	return typed, true, nil
}

// All returns a copy of the raw configuration.
func (p JobParameters) All() map[string]any {
	return maps.Clone(p.raw)
}
