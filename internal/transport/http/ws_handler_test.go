package http

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"tabletop-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, "")

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"ok":true`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestWebSocketCreateJoinAndMove(t *testing.T) {
	ts := startTestServer(t, "")
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	sendRequest(ctx, t, connA, proto.InboundTypeRoomCreate, 1, struct{}{})
	created := readAck(ctx, t, connA, 1)
	if !created.OK || created.RoomID == "" {
		t.Fatalf("create ack: %+v", created)
	}

	sendRequest(ctx, t, connA, proto.InboundTypeRoomJoin, 2, proto.JoinData{RoomID: created.RoomID, Name: "Aria"})
	joined := readAck(ctx, t, connA, 2)
	if joined.State == nil || len(joined.State.Tokens) != 1 {
		t.Fatalf("join ack state: %+v", joined.State)
	}
	if joined.State.DMID != nil {
		t.Fatalf("fresh room has dm %v", *joined.State.DMID)
	}

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendRequest(ctx, t, connB, proto.InboundTypeRoomJoin, 1, proto.JoinData{RoomID: created.RoomID, Name: "Borin"})
	readAck(ctx, t, connB, 1)

	// A sees B's token appear.
	var upsert proto.TokenData
	if err := json.Unmarshal(readEvent(ctx, t, connA, proto.EventTokenUpsert), &upsert); err != nil {
		t.Fatalf("unmarshal upsert: %v", err)
	}
	if upsert.Name != "Borin" || upsert.Kind != "player" {
		t.Fatalf("unexpected upsert: %+v", upsert)
	}

	// B moves with a non-numeric x: the server clamps to the map edge
	// instead of rejecting.
	sendRequest(ctx, t, connB, proto.InboundTypeTokenMove, 2, map[string]any{
		"roomId": created.RoomID,
		"x":      "bogus",
		"y":      700,
	})
	moveAck := readAck(ctx, t, connB, 2)
	if !moveAck.OK {
		t.Fatalf("move ack: %+v", moveAck)
	}

	var move proto.TokenMoveData
	if err := json.Unmarshal(readEvent(ctx, t, connA, proto.EventTokenMove), &move); err != nil {
		t.Fatalf("unmarshal move: %v", err)
	}
	if move.ID != upsert.ID || move.X != 0 || move.Y != 700 {
		t.Fatalf("unexpected move patch: %+v", move)
	}
}

func TestWebSocketUnknownTypeAnswersError(t *testing.T) {
	ts := startTestServer(t, "")
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: "bogus", Seq: 7}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Type != proto.OutboundTypeError || out.Error == nil || out.Error.Code != "BAD_REQUEST" {
		t.Fatalf("unexpected reply: %+v", out)
	}
	if out.Seq != 7 {
		t.Fatalf("error not correlated: seq %d", out.Seq)
	}
}

func TestWebSocketDMLoginFlow(t *testing.T) {
	ts := startTestServer(t, "s3cret")
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendRequest(ctx, t, conn, proto.InboundTypeRoomCreate, 1, struct{}{})
	created := readAck(ctx, t, conn, 1)

	sendRequest(ctx, t, conn, proto.InboundTypeRoomJoin, 2, proto.JoinData{RoomID: created.RoomID})
	readAck(ctx, t, conn, 2)

	sendRequest(ctx, t, conn, proto.InboundTypeDMLogin, 3, proto.DMLoginData{RoomID: created.RoomID, Password: "nope"})
	rejected := readAck(ctx, t, conn, 3)
	if rejected.OK || rejected.Error == nil || rejected.Error.Code != "WRONG_PASSWORD" {
		t.Fatalf("wrong password ack: %+v", rejected)
	}

	sendRequest(ctx, t, conn, proto.InboundTypeDMLogin, 4, proto.DMLoginData{RoomID: created.RoomID, Password: "s3cret"})

	// The dm broadcast lands before the ack.
	var dm proto.DMData
	if err := json.Unmarshal(readEvent(ctx, t, conn, proto.EventRoomDM), &dm); err != nil {
		t.Fatalf("unmarshal dm event: %v", err)
	}
	if dm.DMID == nil {
		t.Fatal("dm event carries null dm after login")
	}

	granted := readAck(ctx, t, conn, 4)
	if !granted.OK {
		t.Fatalf("login ack: %+v", granted)
	}
}
