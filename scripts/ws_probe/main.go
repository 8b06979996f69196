// Command ws_probe is a line-oriented dev client for poking at a running
// tabletop server: it creates or joins a room, prints every patch it
// receives, and turns stdin lines into move/log/login requests.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"tabletop-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_probe: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	room := flag.String("room", "", "room code to join (empty creates a new room)")
	name := flag.String("name", "probe", "player name")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var seq int64
	send := func(msgType string, data any) {
		seq++
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal %s: %v", msgType, err)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Seq: seq, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	roomCh := make(chan string, 1)
	go func() {
		defer cancel()
		readLoop(ctx, conn, roomCh)
	}()

	code := *room
	if code == "" {
		send(proto.InboundTypeRoomCreate, struct{}{})
		select {
		case code = <-roomCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		fmt.Printf("created room %s\n", code)
	}
	send(proto.InboundTypeRoomJoin, proto.JoinData{RoomID: code, Name: *name})

	fmt.Printf("joined %s as %s\n", code, *name)
	fmt.Println("commands: move <x> <y> | login <password> | log <text> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "move":
			if len(fields) != 3 {
				fmt.Println("usage: move <x> <y>")
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			send(proto.InboundTypeTokenMove, proto.MoveData{RoomID: code, X: x, Y: y})
		case "login":
			if len(fields) != 2 {
				fmt.Println("usage: login <password>")
				continue
			}
			send(proto.InboundTypeDMLogin, proto.DMLoginData{RoomID: code, Password: fields[1]})
		case "log":
			send(proto.InboundTypeEventLog, proto.EventLogData{RoomID: code, Text: strings.Join(fields[1:], " ")})
		case "quit":
			return nil
		default:
			fmt.Println("unknown command")
		}
	}

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, roomCh chan<- string) {
	for {
		var outbound struct {
			Type  string          `json:"type"`
			Seq   int64           `json:"seq,omitempty"`
			Event string          `json:"event,omitempty"`
			Data  json.RawMessage `json:"data,omitempty"`
			Error *proto.Error    `json:"error,omitempty"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return
		}

		switch outbound.Type {
		case "ack":
			var ack proto.AckData
			if err := json.Unmarshal(outbound.Data, &ack); err != nil {
				continue
			}
			if ack.RoomID != "" {
				select {
				case roomCh <- ack.RoomID:
				default:
				}
			}
			if ack.Error != nil {
				fmt.Printf("[ack %d] %s: %s\n", outbound.Seq, ack.Error.Code, ack.Error.Msg)
			} else {
				fmt.Printf("[ack %d] ok\n", outbound.Seq)
			}
		case "event":
			fmt.Printf("[%s] %s\n", outbound.Event, string(outbound.Data))
		case "error":
			fmt.Printf("[error] %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
		}
	}
}
