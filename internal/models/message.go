package models

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"

	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Message is a single chat message row. Content is nil for media messages,
// FileID is nil for text.
type Message struct {
	ID                 int        `db:"id" json:"id"`
	ChatID             int        `db:"chat_id" json:"chat_id"`
	SenderID           int        `db:"sender_id" json:"sender_id"`
	MessageType        string     `db:"message_type" json:"message_type"`
	Content            *string    `db:"content" json:"content,omitempty"`
	FileID             *int       `db:"file_id" json:"file_id,omitempty"`
	Status             string     `db:"status" json:"status"`
	DeletedAt          *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy          *int       `db:"deleted_by" json:"deleted_by,omitempty"`
	DeletedForEveryone bool       `db:"deleted_for_everyone" json:"deleted_for_everyone"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// Reaction is one user's emoji reaction, joined with the reactor's username.
type Reaction struct {
	UserID   int    `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Emoji    string `db:"emoji" json:"emoji"`
}

// MessageView is the fully joined message record delivered to clients:
// sender identity, optional file metadata and aggregated reactions.
// IsDeleted covers both the global tombstone and the viewer's own hide.
type MessageView struct {
	Message
	Username   string     `db:"username" json:"username"`
	FullName   *string    `db:"full_name" json:"full_name,omitempty"`
	AvatarURL  *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	FileName   *string    `db:"file_name" json:"file_name,omitempty"`
	FileType   *string    `db:"file_type" json:"file_type,omitempty"`
	FileSize   *int64     `db:"file_size" json:"file_size,omitempty"`
	UploadPath *string    `db:"upload_path" json:"upload_path,omitempty"`
	Reactions  []Reaction `json:"reactions"`
	IsDeleted  bool       `json:"is_deleted"`
}

// File is stored upload metadata; one file belongs to at most one message.
type File struct {
	ID           int       `db:"id" json:"id"`
	OriginalName string    `db:"original_name" json:"original_name"`
	StoredName   string    `db:"stored_name" json:"stored_name"`
	FileType     string    `db:"file_type" json:"file_type"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	UploadPath   string    `db:"upload_path" json:"upload_path"`
	UploadedBy   int       `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
