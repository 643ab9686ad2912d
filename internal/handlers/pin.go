package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"frichat/internal/middleware"
	"frichat/internal/service"
	"frichat/internal/ws"
)

// PinHandler manages pinned message endpoints.
type PinHandler struct {
	pins *service.PinService
	hub  *ws.Hub
}

// NewPinHandler builds a PinHandler.
func NewPinHandler(pins *service.PinService, hub *ws.Hub) *PinHandler {
	return &PinHandler{pins: pins, hub: hub}
}

// PinMessage pins a message for a duration. Re-pinning replaces the
// existing pin and restarts the expiry clock.
func (h *PinHandler) PinMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	// Body is optional; an absent duration falls back to the default.
	var req struct {
		Duration string `json:"duration"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	userID := middleware.UserID(c)
	pin, err := h.pins.Pin(c.Request.Context(), messageID, userID, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(pin.ChatID, ws.EventMessagePinned, pin)

	c.JSON(http.StatusCreated, gin.H{"pin": pin})
}

// UnpinMessage removes a pin. Any chat member may unpin.
func (h *PinHandler) UnpinMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := middleware.UserID(c)
	pin, err := h.pins.Unpin(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.EmitToRoom(pin.ChatID, ws.EventMessageUnpinned, gin.H{
		"message_id": pin.MessageID,
		"chat_id":    pin.ChatID,
		"removed_by": userID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "unpinned"})
}

// ListPins returns the chat's active pins, newest first.
func (h *PinHandler) ListPins(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := middleware.UserID(c)
	pins, err := h.pins.ListActive(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pins": pins})
}
