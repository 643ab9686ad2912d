package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"frichat/internal/middleware"
	"frichat/internal/service"
	"frichat/internal/ws"
)

// ChatHandler manages chat lifecycle and membership endpoints.
type ChatHandler struct {
	chats *service.ChatService
	hub   *ws.Hub
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats *service.ChatService, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{chats: chats, hub: hub}
}

// CreateChat starts a direct or group chat. Creating a direct chat with an
// existing partner returns the existing chat with 200 instead of 201.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		ChatType     string  `json:"chat_type" binding:"required"`
		ChatName     *string `json:"chat_name"`
		Participants []int   `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	chat, created, err := h.chats.Create(c.Request.Context(), userID, req.ChatType, req.ChatName, req.Participants)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chat": chat, "created": created})
}

// ListChats returns the chats visible to the authenticated user, newest
// activity first, each with participants, last message and unread count.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := middleware.UserID(c)

	chats, err := h.chats.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChat returns one chat with its participants.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := middleware.UserID(c)
	detail, err := h.chats.Get(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat": detail})
}

// AddMember adds a user to a group chat. Admin only.
func (h *ChatHandler) AddMember(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	if err := h.chats.AddMember(c.Request.Context(), chatID, userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// RemoveMember removes a user from a group chat. Admin only.
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	memberID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := middleware.UserID(c)
	if err := h.chats.RemoveMember(c.Request.Context(), chatID, userID, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// DeleteChat hides the chat for the requester only. Other members keep
// their view and history.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := middleware.UserID(c)
	if err := h.chats.Hide(c.Request.Context(), chatID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SearchUsers finds users to start a chat with.
func (h *ChatHandler) SearchUsers(c *gin.Context) {
	userID := middleware.UserID(c)

	users, err := h.chats.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
