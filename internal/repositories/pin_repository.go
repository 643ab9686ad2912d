package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"frichat/internal/models"
)

var ErrPinNotFound = errors.New("pin not found")

// PinRepository stores one pin row per message. The active-pins query filters
// on pinned_until itself, so an expired pin is invisible even before the
// sweeper physically removes it.
type PinRepository interface {
	Upsert(ctx context.Context, messageID int, chatID int, pinnedBy int, pinnedUntil time.Time) (models.Pin, error)
	Delete(ctx context.Context, messageID int) error
	GetByMessageID(ctx context.Context, messageID int) (models.Pin, error)
	GetView(ctx context.Context, messageID int) (models.PinView, error)
	ListActive(ctx context.Context, chatID int) ([]models.PinView, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// PinRepo is a sqlx implementation of PinRepository.
type PinRepo struct {
	db *sqlx.DB
}

// NewPinRepo constructs a PinRepo.
func NewPinRepo(db *sqlx.DB) *PinRepo {
	return &PinRepo{db: db}
}

// Upsert inserts the pin or replaces an existing one for the same message.
func (r *PinRepo) Upsert(ctx context.Context, messageID int, chatID int, pinnedBy int, pinnedUntil time.Time) (models.Pin, error) {
	var pin models.Pin
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO pinned_messages (message_id, chat_id, pinned_by, pinned_until) VALUES ($1, $2, $3, $4)
         ON CONFLICT (message_id) DO UPDATE SET pinned_by = EXCLUDED.pinned_by,
             pinned_until = EXCLUDED.pinned_until, created_at = NOW()
         RETURNING id, message_id, chat_id, pinned_by, pinned_until, created_at`,
		messageID, chatID, pinnedBy, pinnedUntil).StructScan(&pin)
	return pin, err
}

// Delete removes the pin row; missing pins surface ErrPinNotFound.
func (r *PinRepo) Delete(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pinned_messages WHERE message_id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPinNotFound
	}
	return nil
}

// GetByMessageID fetches a pin by its message.
func (r *PinRepo) GetByMessageID(ctx context.Context, messageID int) (models.Pin, error) {
	var pin models.Pin
	err := r.db.GetContext(ctx, &pin,
		`SELECT id, message_id, chat_id, pinned_by, pinned_until, created_at FROM pinned_messages WHERE message_id=$1`,
		messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pin{}, ErrPinNotFound
	}
	return pin, err
}

const pinViewQuery = `SELECT p.id, p.message_id, p.chat_id, p.pinned_by, p.pinned_until, p.created_at,
            m.message_type, m.content, m.sender_id,
            sender.username AS sender_name, pinner.username AS pinned_by_name,
            f.original_name AS file_name
        FROM pinned_messages p
        JOIN messages m ON m.id = p.message_id
        JOIN users sender ON sender.id = m.sender_id
        JOIN users pinner ON pinner.id = p.pinned_by
        LEFT JOIN files f ON f.id = m.file_id`

// GetView fetches a pin joined with the message and both identities.
func (r *PinRepo) GetView(ctx context.Context, messageID int) (models.PinView, error) {
	var view models.PinView
	err := r.db.GetContext(ctx, &view, pinViewQuery+` WHERE p.message_id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PinView{}, ErrPinNotFound
	}
	return view, err
}

// ListActive returns unexpired pins for a chat, newest pin first.
func (r *PinRepo) ListActive(ctx context.Context, chatID int) ([]models.PinView, error) {
	var views []models.PinView
	err := r.db.SelectContext(ctx, &views, pinViewQuery+`
        WHERE p.chat_id=$1 AND p.pinned_until > NOW()
        ORDER BY p.created_at DESC`, chatID)
	return views, err
}

// DeleteExpired purges pins past expiry, returning the purged count. Safe to
// run concurrently with pin/unpin: the predicate alone decides.
func (r *PinRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pinned_messages WHERE pinned_until < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
