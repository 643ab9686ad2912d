package observability

// EventEnvelope is the broker payload shape for every mirrored chat event.
type EventEnvelope struct {
	EventName string      `json:"event_name"`
	ChatID    int         `json:"chat_id,omitempty"`
	ActorID   int         `json:"actor_id,omitempty"`
	Payload   interface{} `json:"payload"`
}
