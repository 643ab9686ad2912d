package models

import "time"

const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"

	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Chat is a direct or group conversation container. updated_at is bumped on
// every new message so chat lists sort by recency.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	ChatType  string    `db:"chat_type" json:"chat_type"`
	ChatName  *string   `db:"chat_name" json:"chat_name,omitempty"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Participant is a chat member joined with user identity.
type Participant struct {
	UserID    int     `db:"user_id" json:"user_id"`
	Username  string  `db:"username" json:"username"`
	FullName  *string `db:"full_name" json:"full_name,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
	Status    string  `db:"status" json:"status"`
	Role      string  `db:"role" json:"role"`
}

// LastMessage is the newest message preview shown in chat lists.
type LastMessage struct {
	ID          int       `db:"id" json:"id"`
	Content     *string   `db:"content" json:"content,omitempty"`
	MessageType string    `db:"message_type" json:"message_type"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	SenderName  string    `db:"sender_name" json:"sender_name"`
	Status      string    `db:"status" json:"status"`
	FileName    *string   `db:"file_name" json:"file_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatSummary is the API view of one chat in the user's list.
type ChatSummary struct {
	Chat
	Participants []Participant `json:"participants"`
	LastMessage  *LastMessage  `json:"last_message,omitempty"`
	UnreadCount  int           `json:"unread_count"`
}

// ChatDetail is a chat with its participants.
type ChatDetail struct {
	Chat
	Participants []Participant `json:"participants"`
}
