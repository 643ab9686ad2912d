package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"frichat/internal/middleware"
	"frichat/internal/models"
	"frichat/internal/observability"
	"frichat/internal/repositories"
	"frichat/internal/service"
)

var (
	errMalformedPayload = fmt.Errorf("%w: malformed payload", service.ErrValidation)
	errUnknownEvent     = fmt.Errorf("%w: unknown event", service.ErrValidation)
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated requests to websocket connections and
// dispatches inbound events to the same services the REST layer uses.
type Handler struct {
	hub      *Hub
	messages *service.MessageService
	members  repositories.MembershipRepository
	users    repositories.UserRepository
}

func NewHandler(hub *Hub, messages *service.MessageService, members repositories.MembershipRepository, users repositories.UserRepository) *Handler {
	return &Handler{hub: hub, messages: messages, members: members, users: users}
}

// Handle runs one websocket session. Authentication already happened in the
// middleware, so the user id is on the gin context.
func (h *Handler) Handle(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h.hub, conn, userID)
	first := h.hub.Register(client)
	observability.IncWSActive()
	observability.IncWSEvent("in", "connect")

	ctx := context.Background()
	if first {
		h.setPresence(ctx, userID, models.StatusOnline)
	}
	h.joinMemberRooms(ctx, client)

	go client.writePump()
	client.readPump(h.dispatch)

	last := h.hub.Unregister(client)
	observability.DecWSActive()
	observability.IncWSEvent("in", "disconnect")
	if last {
		h.setPresence(ctx, userID, models.StatusOffline)
	}
}

// setPresence records the transition and announces it to everyone else.
func (h *Handler) setPresence(ctx context.Context, userID int, status string) {
	if err := h.users.SetPresence(ctx, userID, status); err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("status", status).Msg("update presence")
	}

	payload := UserStatusPayload{UserID: userID, Status: status}
	if status == models.StatusOffline {
		now := time.Now()
		payload.LastSeen = &now
	}
	h.hub.EmitToAllExcept(userID, EventUserStatus, payload)
	_ = observability.PublishEvent(ctx, "chat.presence", observability.EventEnvelope{
		EventName: EventUserStatus,
		ActorID:   userID,
		Payload:   payload,
	})
}

// joinMemberRooms subscribes a fresh connection to every chat the user
// belongs to, so broadcasts reach it without an explicit join_chat.
func (h *Handler) joinMemberRooms(ctx context.Context, client *Client) {
	chatIDs, err := h.members.ListChatIDs(ctx, client.userID)
	if err != nil {
		log.Warn().Err(err).Int("user_id", client.userID).Msg("list chats for room join")
		return
	}
	for _, chatID := range chatIDs {
		h.hub.JoinRoom(chatID, client)
	}
}

func (h *Handler) dispatch(client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(client, "malformed event")
		return
	}
	observability.IncWSEvent("in", env.Event)

	ctx := context.Background()
	var err error
	switch env.Event {
	case EventJoinChat:
		err = h.handleJoinChat(ctx, client, env.Data)
	case EventLeaveChat:
		err = h.handleLeaveChat(client, env.Data)
	case EventSendMessage:
		err = h.handleSendMessage(ctx, client, env.Data)
	case EventMessageStatus:
		err = h.handleMessageStatus(ctx, client, env.Data)
	case EventAddReaction:
		err = h.handleAddReaction(ctx, client, env.Data)
	case EventRemoveReaction:
		err = h.handleRemoveReaction(ctx, client, env.Data)
	case EventTyping:
		err = h.handleTyping(ctx, client, env.Data)
	default:
		err = errUnknownEvent
	}
	if err != nil {
		h.sendError(client, errorMessage(err))
	}
}

func (h *Handler) handleJoinChat(ctx context.Context, client *Client, data json.RawMessage) error {
	var p joinChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}

	member, err := h.members.IsMember(ctx, p.ChatID, client.userID)
	if err != nil || !member {
		return service.ErrAccessDenied
	}

	h.hub.JoinRoom(p.ChatID, client)
	return nil
}

func (h *Handler) handleLeaveChat(client *Client, data json.RawMessage) error {
	var p joinChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}
	h.hub.LeaveRoom(p.ChatID, client)
	return nil
}

func (h *Handler) handleSendMessage(ctx context.Context, client *Client, data json.RawMessage) error {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}
	if p.MessageType == "" {
		p.MessageType = models.MessageTypeText
	}

	view, err := h.messages.Send(ctx, p.ChatID, client.userID, p.MessageType, p.Content, p.FileID)
	if err != nil {
		return err
	}

	h.hub.EmitToRoom(view.ChatID, EventNewMessage, view)
	observability.IncWSEvent("out", EventNewMessage)
	_ = observability.PublishEvent(ctx, "chat.message.sent", observability.EventEnvelope{
		EventName: EventNewMessage,
		ChatID:    view.ChatID,
		ActorID:   client.userID,
		Payload:   view,
	})
	return nil
}

func (h *Handler) handleMessageStatus(ctx context.Context, client *Client, data json.RawMessage) error {
	var p messageStatusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}

	msg, err := h.messages.UpdateStatus(ctx, p.MessageID, client.userID, p.Status)
	if err != nil {
		return err
	}

	h.hub.EmitToRoom(msg.ChatID, EventMessageStatusUpdate, statusUpdatePayload{
		MessageID: msg.ID,
		ChatID:    msg.ChatID,
		Status:    msg.Status,
		UpdatedBy: client.userID,
	})
	observability.IncWSEvent("out", EventMessageStatusUpdate)
	return nil
}

func (h *Handler) handleAddReaction(ctx context.Context, client *Client, data json.RawMessage) error {
	var p reactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}

	msg, reaction, err := h.messages.AddReaction(ctx, p.MessageID, client.userID, p.Emoji)
	if err != nil {
		return err
	}

	h.hub.EmitToRoom(msg.ChatID, EventReactionAdded, reactionAddedPayload{
		MessageID: msg.ID,
		ChatID:    msg.ChatID,
		Reaction:  reaction,
	})
	observability.IncWSEvent("out", EventReactionAdded)
	return nil
}

func (h *Handler) handleRemoveReaction(ctx context.Context, client *Client, data json.RawMessage) error {
	var p reactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}

	msg, err := h.messages.RemoveReaction(ctx, p.MessageID, client.userID, p.Emoji)
	if err != nil {
		return err
	}

	h.hub.EmitToRoom(msg.ChatID, EventReactionRemoved, reactionRemovedPayload{
		MessageID: msg.ID,
		ChatID:    msg.ChatID,
		UserID:    client.userID,
		Emoji:     p.Emoji,
	})
	observability.IncWSEvent("out", EventReactionRemoved)
	return nil
}

func (h *Handler) handleTyping(ctx context.Context, client *Client, data json.RawMessage) error {
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errMalformedPayload
	}

	member, err := h.members.IsMember(ctx, p.ChatID, client.userID)
	if err != nil || !member {
		return service.ErrAccessDenied
	}

	user, err := h.users.GetByID(ctx, client.userID)
	if err != nil {
		return err
	}

	h.hub.EmitToRoomExcept(p.ChatID, client, EventUserTyping, userTypingPayload{
		ChatID:   p.ChatID,
		UserID:   client.userID,
		Username: user.Username,
		IsTyping: p.IsTyping,
	})
	observability.IncWSEvent("out", EventUserTyping)
	return nil
}

func (h *Handler) sendError(client *Client, message string) {
	observability.IncWSEvent("out", EventError)
	h.hub.sendToClient(client, EventError, errorPayload{Message: message})
}

// errorMessage keeps internal failures out of client-facing error frames.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return "access denied"
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	case errors.Is(err, service.ErrValidation):
		return err.Error()
	default:
		log.Error().Err(err).Msg("websocket event failed")
		return "internal error"
	}
}
