package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	log "github.com/sirupsen/logrus"
)

type ProfileService struct {
	profiles port.ProfileRepository
	avatars  port.AvatarStorage
	validate *validator.Validate
}

func NewProfile(profiles port.ProfileRepository, avatars port.AvatarStorage) (*ProfileService, error) {
	if profiles == nil {
		return nil, errors.New("profile repository is nil")
	}
	if avatars == nil {
		return nil, errors.New("avatar storage is nil")
	}

	return &ProfileService{
		profiles: profiles,
		avatars:  avatars,
		validate: validator.New(),
	}, nil
}

// Get returns the user's profile, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, user domain.User) (domain.Profile, error) {
	if user.ID == uuid.Nil {
		return domain.Profile{}, domain.ErrUnauthenticated
	}

	profile, err := s.profiles.GetOrCreateProfile(ctx, user.ID, user.FirstName)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.GetOrCreateProfile: %w", err)
	}
	return profile, nil
}

// Update replaces the contact fields. Every violation, uniqueness included, is reported at once.
func (s *ProfileService) Update(ctx context.Context, user domain.User, update domain.ProfileUpdate) (domain.Profile, error) {
	profile, err := s.Get(ctx, user)
	if err != nil {
		return domain.Profile{}, err
	}

	update = update.Trimmed()
	vErr := &domain.ValidationError{}

	if update.FullName == "" {
		vErr.Add("fullName", "Full name is required")
	}

	emailOK := false
	switch {
	case update.Email == "":
		vErr.Add("email", "Email is required")
	case s.validate.Var(update.Email, "email") != nil:
		vErr.Add("email", "Invalid email format")
	default:
		emailOK = true
	}

	phone, err := domain.NormalizePhone(update.Phone)
	if err != nil {
		var phoneErr *domain.ValidationError
		if !errors.As(err, &phoneErr) {
			return domain.Profile{}, fmt.Errorf("domain.NormalizePhone: %w", err)
		}
		vErr.Add("phone", phoneErr.Fields["phone"])
	} else {
		taken, err := s.profiles.PhoneTaken(ctx, phone, user.ID)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("profiles.PhoneTaken: %w", err)
		}
		if taken {
			vErr.Add("phone", "Phone number is already in use")
		}
	}

	if emailOK {
		taken, err := s.profiles.EmailTaken(ctx, update.Email, user.ID)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("profiles.EmailTaken: %w", err)
		}
		if taken {
			vErr.Add("email", "Email is already in use")
		}
	}

	if err := vErr.OrNil(); err != nil {
		return domain.Profile{}, err
	}

	profile.FullName = update.FullName
	profile.Email = update.Email
	profile.Phone = &phone

	if err := s.profiles.UpdateContact(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.UpdateContact: %w", err)
	}

	log.WithField("user_id", user.ID).Info("profile updated")

	return profile, nil
}

// UpdateAvatar stores the uploaded image and points the profile at it.
func (s *ProfileService) UpdateAvatar(ctx context.Context, user domain.User, avatar domain.Avatar, r io.Reader) (domain.Profile, error) {
	if err := avatar.Validate(); err != nil {
		return domain.Profile{}, err
	}

	profile, err := s.Get(ctx, user)
	if err != nil {
		return domain.Profile{}, err
	}

	path, err := s.avatars.SaveAvatar(ctx, user.ID, avatar.Filename, r)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("avatars.SaveAvatar: %w", err)
	}

	if err := s.profiles.UpdateAvatar(ctx, user.ID, path); err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.UpdateAvatar: %w", err)
	}

	profile.AvatarPath = &path
	return profile, nil
}
