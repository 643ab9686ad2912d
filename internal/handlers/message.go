package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"frichat/internal/middleware"
	"frichat/internal/models"
	"frichat/internal/observability"
	"frichat/internal/repositories"
	"frichat/internal/service"
	"frichat/internal/upload"
	"frichat/internal/ws"
)

// MessageHandler manages message and media endpoints. Mutations are
// broadcast to the chat room so websocket clients stay current.
type MessageHandler struct {
	messages *service.MessageService
	repo     repositories.MessageRepository
	store    *upload.Store
	hub      *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages *service.MessageService, repo repositories.MessageRepository, store *upload.Store, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{messages: messages, repo: repo, store: store, hub: hub}
}

// ListMessages returns a page of messages in the chat, oldest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	userID := middleware.UserID(c)
	messages, err := h.messages.List(c.Request.Context(), chatID, userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage posts a text or media message to the chat.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req struct {
		MessageType string  `json:"message_type"`
		Content     *string `json:"content"`
		FileID      *int    `json:"file_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}

	userID := middleware.UserID(c)
	view, err := h.messages.Send(c.Request.Context(), chatID, userID, req.MessageType, req.Content, req.FileID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(view.ChatID, ws.EventNewMessage, view)
	_ = observability.PublishEvent(c.Request.Context(), "chat.message.sent", observability.EventEnvelope{
		EventName: ws.EventNewMessage,
		ChatID:    view.ChatID,
		ActorID:   userID,
		Payload:   view,
	})

	c.JSON(http.StatusCreated, gin.H{"message": view})
}

// UpdateStatus advances a message's delivery status. Status never moves
// backwards; repeating the current status is a no-op.
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	msg, err := h.messages.UpdateStatus(c.Request.Context(), messageID, userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(msg.ChatID, ws.EventMessageStatusUpdate, gin.H{
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"status":     msg.Status,
		"updated_by": userID,
	})

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// AddReaction sets the requester's reaction on a message, replacing any
// previous emoji from the same user.
func (h *MessageHandler) AddReaction(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	msg, reaction, err := h.messages.AddReaction(c.Request.Context(), messageID, userID, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(msg.ChatID, ws.EventReactionAdded, gin.H{
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"reaction":   reaction,
	})

	c.JSON(http.StatusOK, gin.H{"reaction": reaction})
}

// RemoveReaction clears the requester's reaction from a message.
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	emoji := c.Param("emoji")

	userID := middleware.UserID(c)
	msg, err := h.messages.RemoveReaction(c.Request.Context(), messageID, userID, emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(msg.ChatID, ws.EventReactionRemoved, gin.H{
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"user_id":    userID,
		"emoji":      emoji,
	})

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// DeleteMessage removes a message. Within the takeback window it disappears
// for everyone; after that it is hidden for the requester only.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := middleware.UserID(c)
	msg, forEveryone, err := h.messages.Delete(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if forEveryone {
		h.hub.EmitToRoom(msg.ChatID, ws.EventMessageDeleted, ws.MessageDeletedPayload{
			MessageID:          msg.ID,
			ChatID:             msg.ChatID,
			DeletedForEveryone: true,
		})
	}

	c.JSON(http.StatusOK, gin.H{"deleted_for_everyone": forEveryone})
}

// Upload accepts one multipart file and records it so a later message can
// reference it by id.
func (h *MessageHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := h.store.Save(header)
	if err != nil {
		respondError(c, err)
		return
	}

	file.UploadedBy = middleware.UserID(c)
	id, err := h.repo.SaveFile(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	file.ID = id

	c.JSON(http.StatusCreated, gin.H{
		"file":         file,
		"message_type": upload.MessageTypeFor(file.MimeType),
	})
}
