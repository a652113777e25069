package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantError string
	}{
		{name: "8 prefix: normalized", raw: "89001234567", want: "+79001234567"},
		{name: "+7 prefix: unchanged", raw: "+79001234567", want: "+79001234567"},
		{name: "spaces and dashes: stripped", raw: " 8 900-123-45-67 ", want: "+79001234567"},
		{name: "empty: fail", raw: "", wantError: "phone: Phone number is required"},
		{name: "wrong prefix: fail", raw: "79001234567", wantError: "phone: Phone number must start with +7 or 8"},
		{name: "too short: fail", raw: "8900123456", wantError: "phone: Phone number must contain 11 digits (including +7 or 8)"},
		{name: "letters: fail", raw: "+7900123456a", wantError: "phone: Phone number must contain 11 digits (including +7 or 8)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizePhone(tt.raw)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvatarValidate(t *testing.T) {
	assert.NoError(t, domain.Avatar{ContentType: "image/png", Size: 1024}.Validate())
	assert.EqualError(t, domain.Avatar{ContentType: "text/plain", Size: 1}.Validate(), "File must be an image")
	assert.EqualError(t, domain.Avatar{ContentType: "image/png", Size: domain.MaxAvatarBytes + 1}.Validate(), "Image size must not exceed 2 MB")
}

func TestProfileHasContact(t *testing.T) {
	assert.True(t, domain.Profile{FullName: "Ivan", Email: "ivan@example.com"}.HasContact())
	assert.False(t, domain.Profile{FullName: "Ivan"}.HasContact())
	assert.False(t, domain.Profile{Email: "ivan@example.com"}.HasContact())
}
