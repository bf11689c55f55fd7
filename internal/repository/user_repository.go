package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
)

// UserRepo persists user records in the `users` table:
//
//	email           VARCHAR(255) PRIMARY KEY
//	password_hash   VARCHAR(100) NOT NULL
//	tier            VARCHAR(20)  NOT NULL DEFAULT 'free'
//	used_count      INT          NOT NULL DEFAULT 0
//	last_reset_date DATE         NOT NULL
//	created_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
//	updated_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new free-tier user with zero usage dated day.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, day string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, tier, used_count, last_reset_date) VALUES (?,?,?,0,?)",
		normalize(email), passwordHash, string(model.TierFree), day)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// Get fetches a user by normalized email. Returns ErrUserNotFound when
// no record exists.
func (r *UserRepo) Get(ctx context.Context, email string) (model.User, error) {
	var u model.User
	var tier string
	err := r.DB.QueryRowContext(ctx,
		"SELECT email, password_hash, tier, used_count, DATE_FORMAT(last_reset_date, '%Y-%m-%d'), created_at, updated_at FROM users WHERE email=? LIMIT 1",
		normalize(email)).
		Scan(&u.Email, &u.PasswordHash, &tier, &u.UsedCount, &u.LastResetDate, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	u.Tier = model.Tier(tier)
	return u, err
}

// CommitUsage records one consumption for day. The conditional UPDATE is
// a single statement, so concurrent commits for the same user serialize
// on the row: a same-day commit increments the counter, a rollover
// resets it to 1 and moves last_reset_date forward in the same step.
func (r *UserRepo) CommitUsage(ctx context.Context, email, day string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET used_count = IF(last_reset_date = ?, used_count + 1, 1), last_reset_date = ? WHERE email = ?",
		day, day, normalize(email))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
