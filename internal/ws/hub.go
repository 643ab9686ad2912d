package ws

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub tracks every connected client and which chat rooms each one joined.
// All maps are guarded by mu. Sends go through buffered client channels and
// never block, so a slow peer cannot stall a broadcast; channel close only
// happens in Unregister under the write lock, which makes sending under the
// read lock safe.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]map[*Client]struct{}
	rooms   map[int]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int]map[*Client]struct{}),
		rooms:   make(map[int]map[*Client]struct{}),
	}
}

// Register adds a client and reports whether it is the user's first live
// connection, which is the moment the user transitions to online.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	first := len(set) == 0
	set[c] = struct{}{}
	return first
}

// Unregister drops a client from every room it joined and reports whether
// it was the user's last live connection.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for chatID := range c.rooms {
		if members, ok := h.rooms[chatID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}

	set, ok := h.clients[c.userID]
	if !ok {
		return false
	}
	if _, present := set[c]; !present {
		return false
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
		return true
	}
	return false
}

// JoinRoom subscribes a client to a chat's broadcasts.
func (h *Hub) JoinRoom(chatID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[chatID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[chatID] = members
	}
	members[c] = struct{}{}
	c.rooms[chatID] = struct{}{}
}

// LeaveRoom unsubscribes a client from a chat's broadcasts.
func (h *Hub) LeaveRoom(chatID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[chatID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
	delete(c.rooms, chatID)
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// EmitToRoom sends an event to every client subscribed to the chat.
func (h *Hub) EmitToRoom(chatID int, event string, data interface{}) {
	h.emitToRoom(chatID, nil, event, data)
}

// EmitToRoomExcept sends an event to the chat, skipping one client. Used for
// typing so the typist does not echo their own indicator.
func (h *Hub) EmitToRoomExcept(chatID int, except *Client, event string, data interface{}) {
	h.emitToRoom(chatID, except, event, data)
}

func (h *Hub) emitToRoom(chatID int, except *Client, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[chatID] {
		if c != except {
			h.deliver(c, payload, event)
		}
	}
}

// EmitToUser sends an event to every connection held by one user.
func (h *Hub) EmitToUser(userID int, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		h.deliver(c, payload, event)
	}
}

// EmitToAllExcept sends an event to every connection not held by the given
// user. Presence transitions use this so users do not echo their own
// online/offline events back to themselves.
func (h *Hub) EmitToAllExcept(exceptUserID int, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, set := range h.clients {
		if userID == exceptUserID {
			continue
		}
		for c := range set {
			h.deliver(c, payload, event)
		}
	}
}

func (h *Hub) sendToClient(c *Client, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, registered := h.clients[c.userID][c]; !registered {
		return
	}
	h.deliver(c, payload, event)
}

// deliver enqueues without blocking. A client whose buffer is full is
// considered dead; closing the connection makes its pumps exit and the
// handler unregister it.
func (h *Hub) deliver(c *Client, payload []byte, event string) {
	select {
	case c.send <- payload:
	default:
		log.Warn().Int("user_id", c.userID).Str("event", event).Msg("websocket send buffer full, dropping client")
		c.conn.Close()
	}
}
