package ws

import (
	"encoding/json"
	"time"

	"frichat/internal/models"
)

// Inbound event names.
const (
	EventJoinChat       = "join_chat"
	EventLeaveChat      = "leave_chat"
	EventSendMessage    = "send_message"
	EventMessageStatus  = "message_status"
	EventAddReaction    = "add_reaction"
	EventRemoveReaction = "remove_reaction"
	EventTyping         = "typing"
)

// Outbound event names.
const (
	EventNewMessage          = "new_message"
	EventMessageStatusUpdate = "message_status_update"
	EventReactionAdded       = "reaction_added"
	EventReactionRemoved     = "reaction_removed"
	EventUserTyping          = "user_typing"
	EventUserStatus          = "user_status"
	EventMessageDeleted      = "message_deleted"
	EventMessagePinned       = "message_pinned"
	EventMessageUnpinned     = "message_unpinned"
	EventError               = "error"
)

// Envelope is the wire frame for every websocket event in both directions.
// Data is left raw on the way in so each event can decode its own payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Event: event, Data: data})
}

type joinChatPayload struct {
	ChatID int `json:"chat_id"`
}

type sendMessagePayload struct {
	ChatID      int     `json:"chat_id"`
	MessageType string  `json:"message_type"`
	Content     *string `json:"content"`
	FileID      *int    `json:"file_id"`
}

type messageStatusPayload struct {
	MessageID int    `json:"message_id"`
	Status    string `json:"status"`
}

type reactionPayload struct {
	MessageID int    `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type typingPayload struct {
	ChatID   int  `json:"chat_id"`
	IsTyping bool `json:"is_typing"`
}

type statusUpdatePayload struct {
	MessageID int    `json:"message_id"`
	ChatID    int    `json:"chat_id"`
	Status    string `json:"status"`
	UpdatedBy int    `json:"updated_by"`
}

type reactionAddedPayload struct {
	MessageID int             `json:"message_id"`
	ChatID    int             `json:"chat_id"`
	Reaction  models.Reaction `json:"reaction"`
}

type reactionRemovedPayload struct {
	MessageID int    `json:"message_id"`
	ChatID    int    `json:"chat_id"`
	UserID    int    `json:"user_id"`
	Emoji     string `json:"emoji"`
}

type userTypingPayload struct {
	ChatID   int    `json:"chat_id"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// UserStatusPayload announces presence transitions to every connected client.
type UserStatusPayload struct {
	UserID   int        `json:"user_id"`
	Status   string     `json:"status"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// MessageDeletedPayload is broadcast when a sender removes a message for
// everyone inside the takeback window.
type MessageDeletedPayload struct {
	MessageID          int  `json:"message_id"`
	ChatID             int  `json:"chat_id"`
	DeletedForEveryone bool `json:"deleted_for_everyone"`
}

type errorPayload struct {
	Message string `json:"message"`
}
