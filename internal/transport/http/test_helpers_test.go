package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"tabletop-server/internal/config"
	"tabletop-server/internal/core"
	"tabletop-server/internal/proto"
)

func startTestServer(t *testing.T, dmSecret string) *httptest.Server {
	t.Helper()

	registry, err := core.NewRegistry(dmSecret)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	logger := zerolog.Nop()
	hub := core.NewHub(registry, nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		UploadDir:         t.TempDir(),
		MaxUploadBytes:    1 << 20,
	}, nil, nil, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

// outbound mirrors proto.Outbound with raw data for selective decoding.
type outbound struct {
	Type  string          `json:"type"`
	Seq   int64           `json:"seq,omitempty"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

func sendRequest(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, seq int64, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Seq: seq, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readAck reads frames until the ack answering seq arrives, skipping events.
func readAck(ctx context.Context, t *testing.T, conn *websocket.Conn, seq int64) proto.AckData {
	t.Helper()

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read ack: %v", err)
		}
		if out.Type != proto.OutboundTypeAck || out.Seq != seq {
			continue
		}
		var ack proto.AckData
		if err := json.Unmarshal(out.Data, &ack); err != nil {
			t.Fatalf("unmarshal ack: %v", err)
		}
		return ack
	}
}

// readEvent reads frames until the named event arrives, skipping everything else.
func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, name string) json.RawMessage {
	t.Helper()

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read event %s: %v", name, err)
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == name {
			return out.Data
		}
	}
}
