package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

const (
	profileEmailConstraint = "profiles_email_key"
	profilePhoneConstraint = "profiles_phone_key"
)

type profileRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewProfile(pool *pgxpool.Pool) port.ProfileRepository {
	return &profileRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewProfileWithTx(tx pgx.Tx) port.ProfileRepository {
	return &profileRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *profileRepository) GetOrCreateProfile(ctx context.Context, userID uuid.UUID, fullName string) (domain.Profile, error) {
	var p domain.Profile

	if userID == uuid.Nil {
		return p, fmt.Errorf("userID is empty")
	}

	profile, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Profile, error) {
		if _, err := q.InsertProfileIfMissing(ctx, userID, fullName); err != nil {
			return p, fmt.Errorf("q.InsertProfileIfMissing: %w", err)
		}

		row, err := q.GetProfile(ctx, userID)
		if err != nil {
			return p, fmt.Errorf("q.GetProfile: %w", err)
		}

		return mapDBProfileToDomain(row), nil
	})
	if err != nil {
		return p, fmt.Errorf("withTx: %w", err)
	}

	return profile, nil
}

func (r *profileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	var p domain.Profile

	row, err := r.q.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("q.GetProfile: %w", domain.ErrProfileNotFound)
		}
		return p, fmt.Errorf("q.GetProfile: %w", err)
	}

	return mapDBProfileToDomain(row), nil
}

// UpdateContact stores an empty email or phone as NULL so that uniqueness only applies to real values.
func (r *profileRepository) UpdateContact(ctx context.Context, profile domain.Profile) error {
	email := strings.TrimSpace(profile.Email)

	rowsAffected, err := r.q.UpdateProfileContact(ctx, db.UpdateProfileContactParams{
		UserID:   profile.UserID,
		FullName: profile.FullName,
		Email:    lo.EmptyableToPtr(email),
		Phone:    profile.Phone,
	})
	if err != nil {
		switch {
		case isUniqueViolation(err, profileEmailConstraint):
			return fmt.Errorf("q.UpdateProfileContact: %w", domain.NewFieldError("email", "Email is already in use"))
		case isUniqueViolation(err, profilePhoneConstraint):
			return fmt.Errorf("q.UpdateProfileContact: %w", domain.NewFieldError("phone", "Phone number is already in use"))
		}
		return fmt.Errorf("q.UpdateProfileContact: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateProfileContact: %w", domain.ErrProfileNotFound)
	}

	return nil
}

func (r *profileRepository) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarPath string) error {
	if avatarPath == "" {
		return fmt.Errorf("avatarPath is empty")
	}

	rowsAffected, err := r.q.UpdateProfileAvatar(ctx, userID, avatarPath)
	if err != nil {
		return fmt.Errorf("q.UpdateProfileAvatar: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateProfileAvatar: %w", domain.ErrProfileNotFound)
	}

	return nil
}

func (r *profileRepository) EmailTaken(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	taken, err := r.q.EmailTaken(ctx, email, excludeUserID)
	if err != nil {
		return false, fmt.Errorf("q.EmailTaken: %w", err)
	}
	return taken, nil
}

func (r *profileRepository) PhoneTaken(ctx context.Context, phone string, excludeUserID uuid.UUID) (bool, error) {
	taken, err := r.q.PhoneTaken(ctx, phone, excludeUserID)
	if err != nil {
		return false, fmt.Errorf("q.PhoneTaken: %w", err)
	}
	return taken, nil
}

func mapDBProfileToDomain(row db.Profile) domain.Profile {
	return domain.Profile{
		UserID:     row.UserID,
		FullName:   row.FullName,
		Email:      lo.FromPtr(row.Email),
		Phone:      row.Phone,
		AvatarPath: row.AvatarPath,
	}
}
