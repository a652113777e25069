package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAvatar(t *testing.T) {
	root := t.TempDir()

	store, err := storage.NewAvatarStore(root, 16)
	require.NoError(t, err)

	userID := uuid.New()

	tests := []struct {
		name      string
		filename  string
		content   string
		wantPath  string
		wantError string
	}{
		{
			name:     "plain name: ok",
			filename: "me.png",
			content:  "png-bytes",
			wantPath: userID.String() + "/avatar/me.png",
		},
		{
			name:     "path components are dropped: ok",
			filename: "../../etc/me.jpg",
			content:  "jpg-bytes",
			wantPath: userID.String() + "/avatar/me.jpg",
		},
		{
			name:      "hidden file: fail",
			filename:  ".htaccess",
			content:   "x",
			wantError: `invalid file name: ".htaccess"`,
		},
		{
			name:      "too large: fail",
			filename:  "big.png",
			content:   strings.Repeat("x", 17),
			wantError: "avatar exceeds 16 bytes: Image size must not exceed 2 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relPath, err := store.SaveAvatar(t.Context(), userID, tt.filename, bytes.NewBufferString(tt.content))
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, relPath)

			stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(stored))
		})
	}

	// failed uploads leave no temp files behind
	entries, err := os.ReadDir(filepath.Join(root, userID.String(), "avatar"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSaveAvatarOversizedIsValidation(t *testing.T) {
	root := t.TempDir()

	store, err := storage.NewAvatarStore(root, 1024)
	require.NoError(t, err)

	userID := uuid.New()

	// the reader carries more than the limit regardless of what the upload declared
	_, err = store.SaveAvatar(t.Context(), userID, "big.png", bytes.NewReader(make([]byte, 4096)))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Image size must not exceed 2 MB", vErr.Message)

	entries, err := os.ReadDir(filepath.Join(root, userID.String(), "avatar"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
