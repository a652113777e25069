package domain

import "strconv"

const (
	minCardYear = 15
	maxCardYear = 40
)

// Card is the payment form submitted for manual capture. It never leaves the process.
type Card struct {
	Number string
	Name   string
	Month  string
	Year   string
	Code   string
}

func (c Card) Validate() error {
	if len(c.Number) != 16 || !isDigits(c.Number) {
		return NewValidationError("Invalid card number. It should be a 16-digit number.")
	}

	if len(c.Year) != 2 || !isDigits(c.Year) {
		return NewValidationError("Invalid year. It should be a two-digit number between 15 and 40.")
	}
	if year, _ := strconv.Atoi(c.Year); year < minCardYear || year > maxCardYear {
		return NewValidationError("Invalid year. It should be a two-digit number between 15 and 40.")
	}

	if len(c.Month) != 2 || !isDigits(c.Month) {
		return NewValidationError("Invalid month. It should be a two-digit number between 01 and 12.")
	}
	if month, _ := strconv.Atoi(c.Month); month < 1 || month > 12 {
		return NewValidationError("Invalid month. It should be a two-digit number between 01 and 12.")
	}

	if len(c.Code) != 3 || !isDigits(c.Code) {
		return NewValidationError("Invalid code. It should be a 3-digit number.")
	}

	if c.Name == "" {
		return NewValidationError("Missing required fields")
	}

	return nil
}
