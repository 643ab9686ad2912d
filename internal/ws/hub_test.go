package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterReportsFirstAndLastConnection(t *testing.T) {
	hub := NewHub()
	a := newClient(hub, nil, 10)
	b := newClient(hub, nil, 10)

	assert.True(t, hub.Register(a))
	assert.False(t, hub.Register(b))
	assert.True(t, hub.IsOnline(10))

	assert.False(t, hub.Unregister(a))
	assert.True(t, hub.IsOnline(10))
	assert.True(t, hub.Unregister(b))
	assert.False(t, hub.IsOnline(10))
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newClient(hub, nil, 10)

	hub.Register(c)
	assert.True(t, hub.Unregister(c))
	assert.False(t, hub.Unregister(c))
}

func TestEmitToRoomReachesOnlyJoinedClients(t *testing.T) {
	hub := NewHub()
	in := newClient(hub, nil, 10)
	out := newClient(hub, nil, 20)
	hub.Register(in)
	hub.Register(out)
	hub.JoinRoom(1, in)

	hub.EmitToRoom(1, EventNewMessage, map[string]int{"id": 42})

	require.Len(t, in.send, 1)
	assert.Empty(t, out.send)

	var env Envelope
	require.NoError(t, json.Unmarshal(<-in.send, &env))
	assert.Equal(t, EventNewMessage, env.Event)
}

func TestEmitToRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	typist := newClient(hub, nil, 10)
	other := newClient(hub, nil, 20)
	hub.Register(typist)
	hub.Register(other)
	hub.JoinRoom(1, typist)
	hub.JoinRoom(1, other)

	hub.EmitToRoomExcept(1, typist, EventUserTyping, userTypingPayload{ChatID: 1, UserID: 10, IsTyping: true})

	assert.Empty(t, typist.send)
	assert.Len(t, other.send, 1)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := newClient(hub, nil, 10)
	hub.Register(c)
	hub.JoinRoom(1, c)
	hub.LeaveRoom(1, c)

	hub.EmitToRoom(1, EventNewMessage, nil)
	assert.Empty(t, c.send)
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	c := newClient(hub, nil, 10)
	hub.Register(c)
	hub.JoinRoom(1, c)
	hub.JoinRoom(2, c)

	hub.Unregister(c)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.rooms)
}

func TestEmitToAllExceptSkipsTransitioningUser(t *testing.T) {
	hub := NewHub()
	a := newClient(hub, nil, 10)
	a2 := newClient(hub, nil, 10)
	b := newClient(hub, nil, 20)
	hub.Register(a)
	hub.Register(a2)
	hub.Register(b)

	hub.EmitToAllExcept(10, EventUserStatus, UserStatusPayload{UserID: 10, Status: "online"})

	assert.Empty(t, a.send)
	assert.Empty(t, a2.send)
	assert.Len(t, b.send, 1)
}

func TestEmitToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub()
	a := newClient(hub, nil, 10)
	b := newClient(hub, nil, 10)
	hub.Register(a)
	hub.Register(b)

	hub.EmitToUser(10, EventNewMessage, nil)

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}

func TestSendToUnregisteredClientIsDropped(t *testing.T) {
	hub := NewHub()
	c := newClient(hub, nil, 10)
	hub.Register(c)
	hub.Unregister(c)

	// Must not panic on the closed send channel.
	hub.sendToClient(c, EventError, errorPayload{Message: "gone"})
}
