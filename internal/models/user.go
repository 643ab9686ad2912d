package models

import "time"

// Presence states tracked on the users table.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User is a chat participant. The password hash never leaves the auth layer.
type User struct {
	ID        int       `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FullName  *string   `db:"full_name" json:"full_name,omitempty"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Status    string    `db:"status" json:"status"`
	LastSeen  time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
