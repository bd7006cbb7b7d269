package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type PGRepo struct {
	DB *sql.DB
}

const upsertUserQuery = `
INSERT INTO users (id, google_sub, email, name, picture, created_at, last_login_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (google_sub) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  picture = EXCLUDED.picture,
  last_login_at = now()
RETURNING id, created_at, last_login_at`

const getUserQuery = `
SELECT id, google_sub, email, name, picture, created_at, last_login_at
FROM users
WHERE id = $1
LIMIT 1`

func (r *PGRepo) UpsertByGoogleSub(ctx context.Context, user User) (User, error) {
	err := r.DB.QueryRowContext(ctx, upsertUserQuery,
		uuid.NewString(),
		user.GoogleSub,
		user.Email,
		nullableString(user.Name),
		nullableString(user.Picture),
	).Scan(&user.ID, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	var user User
	var name, picture sql.NullString
	err := r.DB.QueryRowContext(ctx, getUserQuery, userID).Scan(
		&user.ID,
		&user.GoogleSub,
		&user.Email,
		&name,
		&picture,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Name = name.String
	user.Picture = picture.String
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
