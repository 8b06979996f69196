package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestHub(t *testing.T, dmSecret string) *Hub {
	t.Helper()

	registry, err := NewRegistry(dmSecret)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	logger := zerolog.Nop()
	hub := NewHub(registry, nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id)
	hub.RegisterClient(c)
	return c
}

// mustEvent waits for the next event of the wanted kind, discarding others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
		}
	}
}

// mustEventOneOf waits for the next event matching any wanted kind.
func mustEventOneOf(t *testing.T, ch <-chan *Event, kinds ...EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kinds %v", kinds)
			}
			for _, k := range kinds {
				if ev.Kind == k {
					return ev
				}
			}
		case <-deadline:
			t.Fatalf("expected one of event kinds %v, none received", kinds)
		}
	}
}

// drainEvents empties whatever is buffered on the client's channel.
func drainEvents(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}

// mustAck waits for the ack answering seq and requires it to be positive.
func mustAck(t *testing.T, ch <-chan *Event, seq int64) *Ack {
	t.Helper()

	ev := mustEvent(t, ch, EventAck)
	if ev.Ack.Seq != seq {
		t.Fatalf("ack for seq %d, want %d", ev.Ack.Seq, seq)
	}
	if !ev.Ack.OK {
		t.Fatalf("ack for seq %d failed: %+v", seq, ev.Ack.Err)
	}
	return ev.Ack
}

// mustErrAck waits for the ack answering seq and requires the given code.
func mustErrAck(t *testing.T, ch <-chan *Event, seq int64, code string) {
	t.Helper()

	ev := mustEvent(t, ch, EventAck)
	if ev.Ack.Seq != seq {
		t.Fatalf("ack for seq %d, want %d", ev.Ack.Seq, seq)
	}
	if ev.Ack.OK {
		t.Fatalf("ack for seq %d succeeded, want error %s", seq, code)
	}
	if ev.Ack.Err == nil || ev.Ack.Err.Code != code {
		t.Fatalf("ack error = %+v, want code %s", ev.Ack.Err, code)
	}
}

func createRoom(t *testing.T, hub *Hub, c *Client) string {
	t.Helper()

	hub.Dispatch(&Command{Kind: CommandCreateRoom, Client: c, Seq: 9000})
	ack := mustAck(t, c.Events, 9000)
	if ack.RoomID == "" {
		t.Fatal("create room ack carries no room id")
	}
	return ack.RoomID
}

func joinRoom(t *testing.T, hub *Hub, c *Client, room, name string) *Ack {
	t.Helper()

	hub.Dispatch(&Command{
		Kind:   CommandJoinRoom,
		Client: c,
		Seq:    9001,
		Room:   room,
		Join:   &JoinParams{Name: name},
	})
	return mustAck(t, c.Events, 9001)
}

func loginDM(t *testing.T, hub *Hub, c *Client, room, password string) {
	t.Helper()

	hub.Dispatch(&Command{
		Kind:     CommandDMLogin,
		Client:   c,
		Seq:      9002,
		Room:     room,
		Password: password,
	})
	mustAck(t, c.Events, 9002)
}
