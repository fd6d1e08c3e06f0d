// Package bferrors provides standardized error classification and wrapping
// helpers used across bifrost's components.
package bferrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Class represents the classification of an error for handling purposes.
type Class int

const (
	// Transient represents temporary errors that may be retried.
	Transient Class = iota
	// Invalid represents errors due to invalid input or configuration.
	Invalid
	// Fatal represents unrecoverable errors that should stop processing.
	Fatal
)

// String returns the string representation of Class.
func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Invalid:
		return "invalid"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Sentinel errors for conditions specific to bifrost.
var (
	ErrMutuallyExclusiveArgs = errors.New("mutually exclusive arguments provided")
	ErrUpstreamExhausted     = errors.New("upstream request failed after retries")
	ErrFeatureDisabled       = errors.New("feature is disabled")
	ErrMissingMongoURL       = errors.New("MONGO_URL is required when PLEBISCITE is enabled")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrMissingConfig         = errors.New("missing required configuration")
	ErrConnectionTimeout     = errors.New("connection timeout")
	ErrParsingFailed         = errors.New("parsing failed")
)

// ClassifiedError wraps an error with its classification and the
// component/operation that produced it.
type ClassifiedError struct {
	Class     Class
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient reports whether err is transient and safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == Transient
	}

	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrUpstreamExhausted) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection", "network", "temporary", "unavailable"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal reports whether err is unrecoverable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == Fatal
	}

	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrMissingConfig)
}

// IsInvalid reports whether err stems from bad caller input.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == Invalid
	}

	return errors.Is(err, ErrMutuallyExclusiveArgs) || errors.Is(err, ErrParsingFailed)
}

func newClassified(class Class, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error following the pattern:
// "component.method: action failed: %w".
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps err as Transient with context.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(Transient, wrapped, component, method, wrapped.Error())
}

// WrapFatal wraps err as Fatal with context.
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(Fatal, wrapped, component, method, wrapped.Error())
}

// WrapInvalid wraps err as Invalid with context.
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(Invalid, wrapped, component, method, wrapped.Error())
}
