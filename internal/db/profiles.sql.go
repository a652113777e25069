package db

import (
	"context"

	"github.com/google/uuid"
)

const insertProfileIfMissing = `-- name: InsertProfileIfMissing :execrows
INSERT INTO profiles (user_id, full_name)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING
`

func (q *Queries) InsertProfileIfMissing(ctx context.Context, userID uuid.UUID, fullName string) (int64, error) {
	result, err := q.db.Exec(ctx, insertProfileIfMissing, userID, fullName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getProfile = `-- name: GetProfile :one
SELECT user_id, full_name, email, phone, avatar_path, updated_at
FROM profiles
WHERE user_id = $1
`

func (q *Queries) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfile, userID)
	var i Profile
	err := row.Scan(
		&i.UserID,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.AvatarPath,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProfileContact = `-- name: UpdateProfileContact :execrows
UPDATE profiles
SET full_name  = $2,
    email      = $3,
    phone      = $4,
    updated_at = now()
WHERE user_id = $1
`

type UpdateProfileContactParams struct {
	UserID   uuid.UUID
	FullName string
	Email    *string
	Phone    *string
}

func (q *Queries) UpdateProfileContact(ctx context.Context, arg UpdateProfileContactParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateProfileContact, arg.UserID, arg.FullName, arg.Email, arg.Phone)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateProfileAvatar = `-- name: UpdateProfileAvatar :execrows
UPDATE profiles
SET avatar_path = $2,
    updated_at  = now()
WHERE user_id = $1
`

func (q *Queries) UpdateProfileAvatar(ctx context.Context, userID uuid.UUID, avatarPath string) (int64, error) {
	result, err := q.db.Exec(ctx, updateProfileAvatar, userID, avatarPath)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const emailTaken = `-- name: EmailTaken :one
SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1 AND user_id <> $2)
`

func (q *Queries) EmailTaken(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, emailTaken, email, excludeUserID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const phoneTaken = `-- name: PhoneTaken :one
SELECT EXISTS(SELECT 1 FROM profiles WHERE phone = $1 AND user_id <> $2)
`

func (q *Queries) PhoneTaken(ctx context.Context, phone string, excludeUserID uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, phoneTaken, phone, excludeUserID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
