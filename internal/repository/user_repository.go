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
)

type userRepository struct {
	q *db.Queries
}

func NewUser(pool *pgxpool.Pool) port.UserRepository {
	return &userRepository{q: db.New(pool)}
}

func (r *userRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	var u domain.User

	if strings.TrimSpace(user.Username) == "" {
		return u, fmt.Errorf("username is empty")
	}
	if user.PasswordHash == "" {
		return u, fmt.Errorf("passwordHash is empty")
	}

	row, err := r.q.CreateUser(ctx, db.CreateUserParams{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
	})
	if err != nil {
		if isUniqueViolation(err, "") {
			return u, fmt.Errorf("q.CreateUser: %w", domain.ErrUsernameTaken)
		}
		return u, fmt.Errorf("q.CreateUser: %w", err)
	}

	return mapDBUserToDomain(row), nil
}

func (r *userRepository) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("q.GetUserByID: %w", domain.ErrUserNotFound)
		}
		return domain.User{}, fmt.Errorf("q.GetUserByID: %w", err)
	}

	return mapDBUserToDomain(row), nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("q.GetUserByUsername: %w", domain.ErrUserNotFound)
		}
		return domain.User{}, fmt.Errorf("q.GetUserByUsername: %w", err)
	}

	return mapDBUserToDomain(row), nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("passwordHash is empty")
	}

	rowsAffected, err := r.q.UpdateUserPassword(ctx, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("q.UpdateUserPassword: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateUserPassword: %w", domain.ErrUserNotFound)
	}

	return nil
}

func mapDBUserToDomain(row db.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		FirstName:    row.FirstName,
		CreatedAt:    row.CreatedAt,
	}
}
