package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"frichat/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository covers user lookup, search and presence persistence.
type UserRepository interface {
	GetByID(ctx context.Context, userID int) (models.User, error)
	Search(ctx context.Context, query string, excludeUserID int, limit int) ([]models.User, error)
	SetPresence(ctx context.Context, userID int, status string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, full_name, avatar_url, status, last_seen, created_at`

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Search matches username or full name, excluding the searcher.
func (r *UserRepo) Search(ctx context.Context, query string, excludeUserID int, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users
        WHERE (username ILIKE $1 OR full_name ILIKE $1) AND id != $2
        ORDER BY username
        LIMIT $3`, pattern, excludeUserID, limit)
	return users, err
}

// SetPresence updates online/offline status and refreshes last_seen.
func (r *UserRepo) SetPresence(ctx context.Context, userID int, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET status=$1, last_seen=NOW() WHERE id=$2`, status, userID)
	return err
}
