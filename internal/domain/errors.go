package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")

	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrBasketItemNotFound = fmt.Errorf("item %w in basket", ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("profile %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUsernameTaken     = NewValidationError("Username already taken")

	// ErrPaymentUnavailable marks provider failures worth retrying later.
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
	// ErrPaymentRejected marks provider failures that will not succeed on retry.
	ErrPaymentRejected = errors.New("payment provider rejected request")
)

// ValidationError is a business-rule or input-format violation.
// Fields holds per-field messages when the violation is field-specific.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	if e.Message != "" {
		return e.Message + ": " + strings.Join(parts, ", ")
	}
	return strings.Join(parts, ", ")
}

// Add records a field message, keeping the first one per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when nothing was recorded, so callers can return it as error.
func (e *ValidationError) OrNil() error {
	if e == nil || (e.Message == "" && len(e.Fields) == 0) {
		return nil
	}
	return e
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
