package core

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventAck answers a client command, positively or negatively.
	EventAck EventKind = iota
	// EventTokenUpsert carries a created or replaced token.
	EventTokenUpsert
	// EventTokenMove carries a token's new position.
	EventTokenMove
	// EventTokenRemove announces a deleted token.
	EventTokenRemove
	// EventRoomDM announces the current DM ("" when the seat empties).
	EventRoomDM
	// EventMapSet carries a replaced map descriptor.
	EventMapSet
	// EventEffectUpsert carries a created effect.
	EventEffectUpsert
	// EventEffectRemove announces a deleted effect.
	EventEffectRemove
	// EventLogged carries a narrative log entry.
	EventLogged
)

// Ack is the reply to one command, correlated by Seq. On success at most one
// payload field is set; on failure Err carries the wire code.
type Ack struct {
	Seq    int64
	OK     bool
	Err    *RoomError
	RoomID string
	State  *StateSnapshot
	Token  *Token
	Effect *Effect
	Entry  *LogEntry
}

// Event is sent to clients to describe what happened. Payload pointers
// reference copies, never live hub state.
type Event struct {
	Kind     EventKind
	Room     string
	Token    *Token
	TokenID  string
	X, Y     float64
	DMID     string
	Map      *MapDescriptor
	Effect   *Effect
	EffectID string
	Entry    *LogEntry
	Ack      *Ack
}

func ackEvent(seq int64, ack Ack) *Event {
	ack.Seq = seq
	return &Event{Kind: EventAck, Ack: &ack}
}

func errAck(seq int64, code, msg string) *Event {
	return ackEvent(seq, Ack{Err: roomError(code, msg)})
}
