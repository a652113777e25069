package port

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type AvatarStorage interface {
	// SaveAvatar stores the file and returns its path relative to the media root.
	SaveAvatar(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (string, error)
}
