package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type ProfileRepository interface {
	// GetOrCreateProfile creates an empty profile carrying fullName when none exists.
	GetOrCreateProfile(ctx context.Context, userID uuid.UUID, fullName string) (domain.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error)

	UpdateContact(ctx context.Context, profile domain.Profile) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarPath string) error

	EmailTaken(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error)
	PhoneTaken(ctx context.Context, phone string, excludeUserID uuid.UUID) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
