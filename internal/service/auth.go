package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", domain.ErrUnauthenticated)

type AuthService struct {
	tx        port.Transactor
	users     port.UserRepository
	tokens    *auth.Tokens
	passwords *auth.Passwords
}

func NewAuth(tx port.Transactor, users port.UserRepository, tokens *auth.Tokens, passwords *auth.Passwords) (*AuthService, error) {
	if tx == nil {
		return nil, errors.New("transactor is nil")
	}
	if users == nil {
		return nil, errors.New("user repository is nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens is nil")
	}
	if passwords == nil {
		return nil, errors.New("passwords is nil")
	}

	return &AuthService{tx: tx, users: users, tokens: tokens, passwords: passwords}, nil
}

// Session is an issued token together with the user it belongs to.
type Session struct {
	User  domain.User
	Token string
}

// SignUp creates the user and its profile together, then signs the user in.
func (s *AuthService) SignUp(ctx context.Context, req domain.SignUp) (Session, error) {
	if err := req.Validate(); err != nil {
		return Session{}, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("passwords.Hash: %w", err)
	}

	var user domain.User

	err = s.tx.WithinTx(ctx, func(repos port.Repositories) error {
		user, err = repos.Users.CreateUser(ctx, domain.User{
			Username:     strings.TrimSpace(req.Username),
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.Name),
		})
		if err != nil {
			return fmt.Errorf("users.CreateUser: %w", err)
		}

		if _, err := repos.Profiles.GetOrCreateProfile(ctx, user.ID, user.FirstName); err != nil {
			return fmt.Errorf("profiles.GetOrCreateProfile: %w", err)
		}
		return nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("tx.WithinTx: %w", err)
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("user signed up")

	return s.session(user)
}

func (s *AuthService) SignIn(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, domain.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("users.GetUserByUsername: %w", err)
	}

	if err := s.passwords.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("passwords.Compare: %w", err)
	}

	return s.session(user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, change domain.PasswordChange) error {
	if userID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	if err := change.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("users.GetUser: %w", err)
	}

	if err := s.passwords.Compare(user.PasswordHash, change.Current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.NewValidationError("Current password is incorrect")
		}
		return fmt.Errorf("passwords.Compare: %w", err)
	}

	hash, err := s.passwords.Hash(change.New)
	if err != nil {
		return fmt.Errorf("passwords.Hash: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("users.UpdatePassword: %w", err)
	}

	log.WithField("user_id", userID).Info("password changed")

	return nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("tokens.Parse: %w: %w", domain.ErrUnauthenticated, err)
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("users.GetUser: %w: %w", domain.ErrUnauthenticated, err)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("users.GetUser: %w", err)
	}

	return user, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return Session{}, fmt.Errorf("tokens.Issue: %w", err)
	}
	return Session{User: user, Token: token}, nil
}
