package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"

	"frichat/internal/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")

	// ErrChatExists means a concurrent insert already created the direct
	// chat for this member pair.
	ErrChatExists = errors.New("chat already exists")
)

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateWithMembers(ctx context.Context, chatType string, chatName *string, createdBy int, creatorRole string, memberIDs []int) (models.Chat, error)
	FindDirectChat(ctx context.Context, userID int, otherID int) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	ListVisibleChats(ctx context.Context, userID int) ([]models.Chat, error)
	LastMessage(ctx context.Context, chatID int) (*models.LastMessage, error)
	UnreadCount(ctx context.Context, chatID int, userID int) (int, error)
	Touch(ctx context.Context, chatID int) error
	HideForUser(ctx context.Context, chatID int, userID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateWithMembers inserts the chat and all membership rows in one
// transaction, so a chat is never observable without its members. Direct
// chats carry a sorted-pair key with a unique constraint, so two concurrent
// creates for the same pair cannot both insert; the loser gets
// ErrChatExists.
func (r *ChatRepo) CreateWithMembers(ctx context.Context, chatType string, chatName *string, createdBy int, creatorRole string, memberIDs []int) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var directKey *string
	if chatType == models.ChatTypeDirect && len(memberIDs) == 1 {
		key := directPairKey(createdBy, memberIDs[0])
		directKey = &key
	}

	var chat models.Chat
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chats (chat_type, chat_name, direct_key, created_by) VALUES ($1, $2, $3, $4)
         ON CONFLICT (direct_key) DO NOTHING
         RETURNING id, chat_type, chat_name, created_by, created_at, updated_at`,
		chatType, chatName, directKey, createdBy).StructScan(&chat)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatExists
	}
	if err != nil {
		return models.Chat{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_members (chat_id, user_id, role) VALUES ($1, $2, $3)`,
		chat.ID, createdBy, creatorRole); err != nil {
		return models.Chat{}, err
	}
	for _, memberID := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_members (chat_id, user_id, role) VALUES ($1, $2, $3)`,
			chat.ID, memberID, models.RoleMember); err != nil {
			return models.Chat{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// directPairKey is order-independent: both participant orders produce the
// same key.
func directPairKey(a, b int) string {
	if b < a {
		a, b = b, a
	}
	return strconv.Itoa(a) + ":" + strconv.Itoa(b)
}

// FindDirectChat locates the direct chat containing exactly the given pair,
// in either order. Returns ErrChatNotFound when none exists.
func (r *ChatRepo) FindDirectChat(ctx context.Context, userID int, otherID int) (models.Chat, error) {
	var chat models.Chat
	query := `SELECT c.id, c.chat_type, c.chat_name, c.created_by, c.created_at, c.updated_at
        FROM chats c
        JOIN chat_members m1 ON m1.chat_id = c.id AND m1.user_id = $1
        JOIN chat_members m2 ON m2.chat_id = c.id AND m2.user_id = $2
        WHERE c.chat_type = 'direct'
        LIMIT 1`
	err := r.db.GetContext(ctx, &chat, query, userID, otherID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, chat_type, chat_name, created_by, created_at, updated_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// ListVisibleChats returns the user's chats minus the ones they have hidden,
// most recently active first.
func (r *ChatRepo) ListVisibleChats(ctx context.Context, userID int) ([]models.Chat, error) {
	var chats []models.Chat
	query := `SELECT DISTINCT c.id, c.chat_type, c.chat_name, c.created_by, c.created_at, c.updated_at
        FROM chats c
        JOIN chat_members cm ON cm.chat_id = c.id
        LEFT JOIN deleted_chats dc ON dc.chat_id = c.id AND dc.user_id = $1
        WHERE cm.user_id = $1 AND dc.id IS NULL
        ORDER BY c.updated_at DESC`
	err := r.db.SelectContext(ctx, &chats, query, userID)
	return chats, err
}

// LastMessage returns the newest message preview for a chat, nil when the
// chat is empty.
func (r *ChatRepo) LastMessage(ctx context.Context, chatID int) (*models.LastMessage, error) {
	var last models.LastMessage
	query := `SELECT m.id, m.content, m.message_type, m.sender_id, u.username AS sender_name,
            m.status, f.original_name AS file_name, m.created_at
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        LEFT JOIN files f ON f.id = m.file_id
        WHERE m.chat_id=$1
        ORDER BY m.created_at DESC
        LIMIT 1`
	err := r.db.GetContext(ctx, &last, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last, nil
}

// UnreadCount counts other members' messages not yet read in this chat.
func (r *ChatRepo) UnreadCount(ctx context.Context, chatID int, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE chat_id=$1 AND sender_id != $2 AND status != 'read'`,
		chatID, userID)
	return count, err
}

// Touch bumps updated_at so the chat sorts to the top of lists.
func (r *ChatRepo) Touch(ctx context.Context, chatID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chats SET updated_at=NOW() WHERE id=$1`, chatID)
	return err
}

// HideForUser records a per-user chat hide; re-hiding refreshes the timestamp.
func (r *ChatRepo) HideForUser(ctx context.Context, chatID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO deleted_chats (chat_id, user_id) VALUES ($1, $2)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET deleted_at = NOW()`, chatID, userID)
	return err
}
