package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"frichat/internal/models"
)

// ReactionRepository stores emoji reactions keyed (message, user, emoji).
// Concurrency correctness comes from the unique constraint plus upsert,
// not from any in-process locking.
type ReactionRepository interface {
	Upsert(ctx context.Context, messageID int, userID int, emoji string) error
	Delete(ctx context.Context, messageID int, userID int, emoji string) error
	ListForMessages(ctx context.Context, messageIDs []int) (map[int][]models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// Upsert adds a reaction; re-adding the same emoji is idempotent.
func (r *ReactionRepo) Upsert(ctx context.Context, messageID int, userID int, emoji string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)
        ON CONFLICT (message_id, user_id, emoji) DO UPDATE SET emoji = EXCLUDED.emoji`,
		messageID, userID, emoji)
	return err
}

// Delete removes a reaction; deleting a missing row is a no-op.
func (r *ReactionRepo) Delete(ctx context.Context, messageID int, userID int, emoji string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_reactions WHERE message_id=$1 AND user_id=$2 AND emoji=$3`,
		messageID, userID, emoji)
	return err
}

// ListForMessages aggregates reactions for a batch of messages, joined with
// the reactor's username.
func (r *ReactionRepo) ListForMessages(ctx context.Context, messageIDs []int) (map[int][]models.Reaction, error) {
	result := make(map[int][]models.Reaction, len(messageIDs))
	if len(messageIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT mr.message_id, mr.user_id, u.username, mr.emoji
        FROM message_reactions mr
        JOIN users u ON u.id = mr.user_id
        WHERE mr.message_id = ANY($1)
        ORDER BY mr.created_at`, pq.Array(messageIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var messageID int
		var reaction models.Reaction
		if err := rows.Scan(&messageID, &reaction.UserID, &reaction.Username, &reaction.Emoji); err != nil {
			return nil, err
		}
		result[messageID] = append(result[messageID], reaction)
	}
	return result, rows.Err()
}
