package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront/internal/domain"
)

// Clock resolves "today" in the shop's time zone, which is what sale windows are compared against.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Today() time.Time {
	return domain.DateOf(c.Now().In(c.Location))
}

// fieldErrors converts validator failures into a field-keyed validation error.
// A missing required field is reported with requiredMsg instead.
func fieldErrors(err error, requiredMsg string) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	result := &domain.ValidationError{}
	for _, fe := range vErrs {
		if fe.Tag() == "required" {
			return domain.NewValidationError(requiredMsg)
		}
		result.Add(lowerFirst(fe.Field()), "Invalid value for "+lowerFirst(fe.Field()))
	}

	return result.OrNil()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
