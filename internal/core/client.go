package core

// Client is one connected participant as seen by the hub. The Events channel
// is drained by the transport's write loop; rooms is the connection→room
// index the disconnect cleanup walks. rooms and done are only ever touched
// by the hub goroutine.
type Client struct {
	ID     string
	Events chan *Event
	rooms  map[string]*Room
	done   bool
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 64),
		rooms:  make(map[string]*Room),
	}
}

// send delivers an event without blocking the hub. Slow consumers drop, as
// do clients that already went through disconnect cleanup: commands from a
// closed connection can still be queued behind its unregister, and their
// acks must not go anywhere. Events is never closed for the same reason.
func (c *Client) send(ev *Event) bool {
	if c.done {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
