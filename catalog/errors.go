package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrIdentifierAttributeMissing = errors.New("catalog: identifier attribute is not configured")
	ErrUnknownChannel             = errors.New("catalog: unknown channel")
	ErrFamilyCodeRequired         = errors.New("catalog: family code is required")
	ErrProductIdentifierRequired  = errors.New("catalog: product identifier is required")
	ErrUnknownAttribute           = errors.New("catalog: unknown attribute")
	ErrUnknownFamily              = errors.New("catalog: unknown family")
	ErrUnknownLocale              = errors.New("catalog: unknown locale")
	ErrInvalidValue               = errors.New("catalog: value does not match its attribute")
)

// NotFoundError reports a missing catalog record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
