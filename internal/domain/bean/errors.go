package bean

import (
	"errors"
	"fmt"
)

var (
	ErrRequired        = errors.New("required property is not set")
	ErrNegative        = errors.New("property must not be negative")
	ErrInvalid         = errors.New("property value is invalid")
	ErrUnknownProperty = errors.New("unknown property")
	ErrImmutableBean   = errors.New("property cannot be written on an immutable bean")
	ErrPropertyType    = errors.New("property value has unexpected type")
	ErrUnknownBean     = errors.New("unknown bean")
)

// ValidationError reports a property that failed validation when a bean was built.
type ValidationError struct {
	Bean  string
	Field string
	Rule  string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Bean, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PropertyError reports a failed property-by-name access.
type PropertyError struct {
	Bean     string
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Bean, e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// Required builds the validation error for an unset required property.
func Required(beanName, field string) error {
	return &ValidationError{Bean: beanName, Field: field, Rule: "required", Err: ErrRequired}
}

// Invalid builds a validation error carrying a custom reason.
func Invalid(beanName, field, reason string) error {
	return &ValidationError{Bean: beanName, Field: field, Rule: "invalid", Err: fmt.Errorf("%w: %s", ErrInvalid, reason)}
}
