package models

import "time"

// Pin highlights one message in a chat until pinned_until. A message has at
// most one pin row; re-pinning replaces pinned_by/pinned_until/created_at.
type Pin struct {
	ID          int       `db:"id" json:"id"`
	MessageID   int       `db:"message_id" json:"message_id"`
	ChatID      int       `db:"chat_id" json:"chat_id"`
	PinnedBy    int       `db:"pinned_by" json:"pinned_by"`
	PinnedUntil time.Time `db:"pinned_until" json:"pinned_until"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PinView joins a pin with the pinned message and both identities involved.
type PinView struct {
	Pin
	MessageType  string  `db:"message_type" json:"message_type"`
	Content      *string `db:"content" json:"content,omitempty"`
	SenderID     int     `db:"sender_id" json:"sender_id"`
	SenderName   string  `db:"sender_name" json:"sender_name"`
	PinnedByName string  `db:"pinned_by_name" json:"pinned_by_name"`
	FileName     *string `db:"file_name" json:"file_name,omitempty"`
}
