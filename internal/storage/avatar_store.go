package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type avatarStore struct {
	root     string
	maxBytes int64
}

// NewAvatarStore keeps avatars under root as <user id>/avatar/<file name>.
func NewAvatarStore(root string, maxBytes int64) (port.AvatarStorage, error) {
	if root == "" {
		return nil, errors.New("root is empty")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("maxBytes is not positive: %d", maxBytes)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &avatarStore{root: root, maxBytes: maxBytes}, nil
}

func (s *avatarStore) SaveAvatar(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("userID is empty")
	}

	name := cleanFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath := path.Join(userID.String(), "avatar", name)
	dir := filepath.Join(s.root, userID.String(), "avatar")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp.Name())
	}()

	written, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if written > s.maxBytes {
		// the multipart header understated the size
		return "", fmt.Errorf("avatar exceeds %d bytes: %w", s.maxBytes, domain.NewValidationError("Image size must not exceed 2 MB"))
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("os.Rename: %w", err)
	}

	return relPath, nil
}

func cleanFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case ".", "..", "/", "":
		return ""
	}
	if strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}
