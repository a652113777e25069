package domain

import (
	"strings"

	"github.com/google/uuid"
)

const MaxAvatarBytes = 2 << 20

type Profile struct {
	UserID     uuid.UUID
	FullName   string
	Email      string
	Phone      *string
	AvatarPath *string
}

// HasContact reports whether the profile carries what an order needs.
func (p Profile) HasContact() bool {
	return strings.TrimSpace(p.FullName) != "" && strings.TrimSpace(p.Email) != ""
}

type ProfileUpdate struct {
	FullName string
	Email    string
	Phone    string
}

// Trimmed returns a copy with surrounding whitespace removed from all fields.
func (u ProfileUpdate) Trimmed() ProfileUpdate {
	return ProfileUpdate{
		FullName: strings.TrimSpace(u.FullName),
		Email:    strings.TrimSpace(u.Email),
		Phone:    strings.TrimSpace(u.Phone),
	}
}

// NormalizePhone accepts +7XXXXXXXXXX or 8XXXXXXXXXX, ignoring spaces and dashes,
// and returns the +7 form.
func NormalizePhone(raw string) (string, error) {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if phone == "" {
		return "", NewFieldError("phone", "Phone number is required")
	}

	var digits string
	switch {
	case strings.HasPrefix(phone, "+7"):
		digits = phone[2:]
	case strings.HasPrefix(phone, "8"):
		digits = phone[1:]
	default:
		return "", NewFieldError("phone", "Phone number must start with +7 or 8")
	}

	if len(digits) != 10 || !isDigits(digits) {
		return "", NewFieldError("phone", "Phone number must contain 11 digits (including +7 or 8)")
	}

	return "+7" + digits, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

type Avatar struct {
	Filename    string
	ContentType string
	Size        int64
}

func (a Avatar) Validate() error {
	if !strings.HasPrefix(a.ContentType, "image/") {
		return NewValidationError("File must be an image")
	}
	if a.Size > MaxAvatarBytes {
		return NewValidationError("Image size must not exceed 2 MB")
	}
	return nil
}
