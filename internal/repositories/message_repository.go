package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"frichat/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrFileNotFound    = errors.New("file not found")

	// ErrStatusNotAdvanced means a concurrent writer already moved the
	// status at or past the requested one.
	ErrStatusNotAdvanced = errors.New("status not advanced")
)

// MessageRepository defines persistence for chat messages and files.
type MessageRepository interface {
	Create(ctx context.Context, chatID int, senderID int, messageType string, content *string, fileID *int) (int, error)
	GetByID(ctx context.Context, messageID int) (models.Message, error)
	GetView(ctx context.Context, messageID int) (models.MessageView, error)
	ListForViewer(ctx context.Context, chatID int, viewerID int, limit int, offset int) ([]models.MessageView, error)
	UpdateStatus(ctx context.Context, messageID int, status string) error
	MarkDeletedForEveryone(ctx context.Context, messageID int, deletedBy int) error
	HideForUser(ctx context.Context, messageID int, userID int) error
	SaveFile(ctx context.Context, file models.File) (int, error)
	GetFile(ctx context.Context, fileID int) (models.File, error)
	FileInUse(ctx context.Context, fileID int) (bool, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a message with initial status 'sent' and returns its id.
func (r *MessageRepo) Create(ctx context.Context, chatID int, senderID int, messageType string, content *string, fileID *int) (int, error) {
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, message_type, content, file_id, status)
         VALUES ($1, $2, $3, $4, $5, 'sent') RETURNING id`,
		chatID, senderID, messageType, content, fileID).Scan(&id)
	return id, err
}

const messageColumns = `id, chat_id, sender_id, message_type, content, file_id, status,
        deleted_at, deleted_by, deleted_for_everyone, created_at`

// GetByID retrieves a bare message row.
func (r *MessageRepo) GetByID(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

const messageViewQuery = `SELECT m.id, m.chat_id, m.sender_id, m.message_type, m.content, m.file_id,
            m.status, m.deleted_at, m.deleted_by, m.deleted_for_everyone, m.created_at,
            u.username, u.full_name, u.avatar_url,
            f.original_name AS file_name, f.file_type, f.file_size, f.upload_path
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        LEFT JOIN files f ON f.id = m.file_id`

// GetView retrieves one message joined with sender identity and file metadata.
func (r *MessageRepo) GetView(ctx context.Context, messageID int) (models.MessageView, error) {
	var view models.MessageView
	err := r.db.GetContext(ctx, &view, messageViewQuery+` WHERE m.id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageView{}, ErrMessageNotFound
	}
	return view, err
}

// ListForViewer pages messages newest-first, excluding rows the viewer has
// hidden for themselves. Globally tombstoned rows are included; the service
// layer blanks them.
func (r *MessageRepo) ListForViewer(ctx context.Context, chatID int, viewerID int, limit int, offset int) ([]models.MessageView, error) {
	var views []models.MessageView
	query := messageViewQuery + `
        WHERE m.chat_id=$1
          AND NOT EXISTS (SELECT 1 FROM deleted_messages dm WHERE dm.message_id = m.id AND dm.user_id = $2)
        ORDER BY m.created_at DESC
        LIMIT $3 OFFSET $4`
	err := r.db.SelectContext(ctx, &views, query, chatID, viewerID, limit, offset)
	return views, err
}

// UpdateStatus moves the status column forward only. The rank comparison
// lives in the UPDATE itself so two racing writers cannot persist a
// regression; the store is the arbiter, not the caller's read.
func (r *MessageRepo) UpdateStatus(ctx context.Context, messageID int, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET status=$1
        WHERE id=$2
          AND (CASE status WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 WHEN 'read' THEN 3 ELSE 0 END)
            < (CASE $1 WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 WHEN 'read' THEN 3 ELSE 0 END)`,
		status, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1)`, messageID); err != nil {
			return err
		}
		if !exists {
			return ErrMessageNotFound
		}
		return ErrStatusNotAdvanced
	}
	return nil
}

// MarkDeletedForEveryone sets the global tombstone.
func (r *MessageRepo) MarkDeletedForEveryone(ctx context.Context, messageID int, deletedBy int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET deleted_for_everyone = TRUE, deleted_at = NOW(), deleted_by = $2 WHERE id=$1`,
		messageID, deletedBy)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// HideForUser records a per-user hide; re-deleting refreshes the timestamp.
func (r *MessageRepo) HideForUser(ctx context.Context, messageID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO deleted_messages (message_id, user_id) VALUES ($1, $2)
        ON CONFLICT (message_id, user_id) DO UPDATE SET deleted_at = NOW()`, messageID, userID)
	return err
}

// GetFile retrieves upload metadata by id.
func (r *MessageRepo) GetFile(ctx context.Context, fileID int) (models.File, error) {
	var file models.File
	err := r.db.GetContext(ctx, &file,
		`SELECT id, original_name, stored_name, file_type, file_size, mime_type, upload_path, uploaded_by, created_at
         FROM files WHERE id=$1`, fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.File{}, ErrFileNotFound
	}
	return file, err
}

// FileInUse reports whether any message already references the file.
func (r *MessageRepo) FileInUse(ctx context.Context, fileID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE file_id=$1)`, fileID)
	return exists, err
}

// SaveFile stores upload metadata and returns the file id.
func (r *MessageRepo) SaveFile(ctx context.Context, file models.File) (int, error) {
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO files (original_name, stored_name, file_type, file_size, mime_type, upload_path, uploaded_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		file.OriginalName, file.StoredName, file.FileType, file.FileSize, file.MimeType, file.UploadPath, file.UploadedBy).Scan(&id)
	return id, err
}
