package core

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tabletop-server/internal/auth"
)

// Player tokens spawn at a random position inside this square so newly
// joined pieces don't stack on the origin.
const (
	spawnMin = 200
	spawnMax = 400

	defaultPlayerName = "Anon"
	defaultEnemyName  = "Enemy"
)

// Hub owns the room registry and processes every command on a single
// goroutine. Handlers run to completion before the next command starts, so
// each mutation plus its broadcast is atomic with respect to all others and
// room state needs no locks.
type Hub struct {
	registry   *Registry
	register   chan *Client
	unregister chan *Client
	commands   chan *Command
	mon        Monitor
	log        *zerolog.Logger
}

// NewHub constructs a hub around an existing registry.
func NewHub(registry *Registry, mon Monitor, logger *zerolog.Logger) *Hub {
	if mon == nil {
		mon = NopMonitor{}
	}
	return &Hub{
		registry:   registry,
		register:   make(chan *Client, 8),
		unregister: make(chan *Client, 8),
		commands:   make(chan *Command, 64),
		mon:        mon,
		log:        logger,
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient triggers disconnect cleanup for c. Called exactly once
// per connection by the transport.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Dispatch queues a command for processing.
func (h *Hub) Dispatch(cmd *Command) {
	h.commands <- cmd
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mon.ClientConnected()
			h.log.Debug().Str("client_id", c.ID).Msg("client registered")
		case c := <-h.unregister:
			h.cleanup(c)
			h.mon.ClientDisconnected()
		case cmd := <-h.commands:
			h.handle(cmd)
			h.mon.CommandHandled()
		}
	}
}

// handle dispatches one command. A panicking handler is contained here: the
// caller gets an error ack and the hub keeps serving other rooms.
func (h *Hub) handle(cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("client_id", cmd.Client.ID).Msg("handler panicked")
			cmd.Client.send(errAck(cmd.Seq, ErrCodeInternal, "internal error"))
		}
	}()

	switch cmd.Kind {
	case CommandCreateRoom:
		h.createRoom(cmd)
	case CommandJoinRoom:
		h.joinRoom(cmd)
	case CommandMoveToken:
		h.moveToken(cmd)
	case CommandAddEnemy:
		h.addEnemy(cmd)
	case CommandRemoveToken:
		h.removeToken(cmd)
	case CommandDMLogin:
		h.dmLogin(cmd)
	case CommandSetMap:
		h.setMap(cmd)
	case CommandAddEffect:
		h.addEffect(cmd)
	case CommandRemoveEffect:
		h.removeEffect(cmd)
	case CommandLogEvent:
		h.logEvent(cmd)
	case CommandLogAttack:
		h.logAttack(cmd)
	default:
		cmd.Client.send(errAck(cmd.Seq, ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) room(cmd *Command) (*Room, bool) {
	room, ok := h.registry.Find(cmd.Room)
	if !ok {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeRoomNotFound, "room not found"))
		return nil, false
	}
	return room, true
}

func (h *Hub) requireDM(room *Room, cmd *Command) bool {
	if !room.IsDM(cmd.Client) {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeNotDM, "requires dm authority"))
		return false
	}
	return true
}

func (h *Hub) broadcast(room *Room, ev *Event) {
	room.Broadcast(ev)
	h.mon.PatchBroadcast()
}

func (h *Hub) broadcastExcept(room *Room, sender *Client, ev *Event) {
	room.BroadcastExcept(sender, ev)
	h.mon.PatchBroadcast()
}

func (h *Hub) createRoom(cmd *Command) {
	room, err := h.registry.Create()
	if err != nil {
		h.log.Error().Err(err).Msg("create room")
		cmd.Client.send(errAck(cmd.Seq, ErrCodeInternal, "could not create room"))
		return
	}
	h.mon.SetLiveRooms(h.registry.Len())
	h.log.Info().Str("room", room.Code).Msg("room created")
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, RoomID: room.Code}))
}

func (h *Hub) joinRoom(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}

	name := truncate(cmd.Join.Name, MaxNameLen)
	if name == "" {
		name = defaultPlayerName
	}

	token := &Token{
		ID:      cmd.Client.ID,
		Kind:    TokenKindPlayer,
		OwnerID: cmd.Client.ID,
		Name:    name,
		X:       spawnCoord(),
		Y:       spawnCoord(),
		ImgURL:  truncate(cmd.Join.ImgURL, MaxTokenImgLen),
		Color:   truncate(cmd.Join.Color, MaxColorLen),
	}
	room.State.Tokens[token.ID] = token
	room.AddMember(cmd.Client)
	cmd.Client.rooms[room.Code] = room

	h.log.Info().Str("room", room.Code).Str("client_id", cmd.Client.ID).Str("name", name).Msg("player joined")

	// The joiner gets the authoritative snapshot (its own token included);
	// everyone else gets the new token.
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, State: room.State.Snapshot()}))
	h.broadcastExcept(room, cmd.Client, &Event{Kind: EventTokenUpsert, Room: room.Code, Token: token.clone()})

	// Late joiners learn the DM immediately instead of waiting for the next
	// dm-change event.
	cmd.Client.send(&Event{Kind: EventRoomDM, Room: room.Code, DMID: room.DMID()})
}

func (h *Hub) moveToken(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}

	id := cmd.Move.ID
	if id == "" {
		id = cmd.Client.ID
	}

	// A player moves only itself; the DM moves enemies; nobody moves another
	// player's token.
	foreign := id != cmd.Client.ID
	if foreign && !h.requireDM(room, cmd) {
		return
	}
	token, exists := room.State.Tokens[id]
	if !exists {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeTokenNotFound, "token not found"))
		return
	}
	if foreign && token.Kind != TokenKindEnemy {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeOnlyEnemyMovable, "only enemy tokens can be moved by the dm"))
		return
	}

	token.X = clampCoord(cmd.Move.X, 0, room.State.Map.Width)
	token.Y = clampCoord(cmd.Move.Y, 0, room.State.Map.Height)

	ev := &Event{Kind: EventTokenMove, Room: room.Code, TokenID: token.ID, X: token.X, Y: token.Y}
	if foreign {
		// The DM applied nothing locally and needs the echo too.
		h.broadcast(room, ev)
	} else {
		h.broadcastExcept(room, cmd.Client, ev)
	}
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true}))
}

func (h *Hub) addEnemy(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	if !h.requireDM(room, cmd) {
		return
	}

	name := truncate(cmd.Enemy.Name, MaxNameLen)
	if name == "" {
		name = defaultEnemyName
	}
	token := &Token{
		ID:     uuid.NewString(),
		Kind:   TokenKindEnemy,
		Name:   name,
		X:      clampCoord(cmd.Enemy.X, 0, room.State.Map.Width),
		Y:      clampCoord(cmd.Enemy.Y, 0, room.State.Map.Height),
		ImgURL: truncate(cmd.Enemy.ImgURL, MaxTokenImgLen),
	}
	room.State.Tokens[token.ID] = token

	// Whole room including the sender: the DM needs the server-assigned id.
	h.broadcast(room, &Event{Kind: EventTokenUpsert, Room: room.Code, Token: token.clone()})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, Token: token.clone()}))
}

func (h *Hub) removeToken(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	if !h.requireDM(room, cmd) {
		return
	}
	if cmd.TokenID == "" {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeBadID, "token id is required"))
		return
	}
	if _, exists := room.State.Tokens[cmd.TokenID]; !exists {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeTokenNotFound, "token not found"))
		return
	}
	delete(room.State.Tokens, cmd.TokenID)

	h.broadcast(room, &Event{Kind: EventTokenRemove, Room: room.Code, TokenID: cmd.TokenID})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true}))
}

func (h *Hub) dmLogin(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	hash := room.SecretHash()
	if hash == nil {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeDMNotConfigured, "no dm password configured"))
		return
	}
	// Verification runs inline on the hub goroutine; nothing can interleave
	// between the check and the authority change below.
	if err := auth.VerifySecret(hash, cmd.Password); err != nil {
		h.log.Warn().Str("room", room.Code).Str("client_id", cmd.Client.ID).Msg("dm login rejected")
		cmd.Client.send(errAck(cmd.Seq, ErrCodeWrongPassword, "wrong password"))
		return
	}

	// Latest authenticated login wins; a previous DM loses the seat
	// implicitly. Logging in also joins the broadcast group so the seat is
	// always held by a connected, cleanable member.
	room.AddMember(cmd.Client)
	cmd.Client.rooms[room.Code] = room
	room.SetDM(cmd.Client)

	h.log.Info().Str("room", room.Code).Str("client_id", cmd.Client.ID).Msg("dm login")
	h.broadcast(room, &Event{Kind: EventRoomDM, Room: room.Code, DMID: cmd.Client.ID})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true}))
}

func (h *Hub) setMap(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	if !h.requireDM(room, cmd) {
		return
	}

	room.State.Map = MapDescriptor{
		URL:    truncate(cmd.Map.URL, MaxMapURLLen),
		Width:  clampCoord(cmd.Map.Width, MapMinSize, MapMaxSize),
		Height: clampCoord(cmd.Map.Height, MapMinSize, MapMaxSize),
	}

	m := room.State.Map
	h.broadcast(room, &Event{Kind: EventMapSet, Room: room.Code, Map: &m})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true}))
}

func (h *Hub) addEffect(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	if !h.requireDM(room, cmd) {
		return
	}

	effect := &Effect{
		ID:     uuid.NewString(),
		Kind:   truncate(cmd.Effect.Kind, MaxKindLen),
		X:      cmd.Effect.X,
		Y:      cmd.Effect.Y,
		Radius: cmd.Effect.Radius,
		Color:  truncate(cmd.Effect.Color, MaxColorLen),
	}
	room.State.Effects[effect.ID] = effect

	h.broadcast(room, &Event{Kind: EventEffectUpsert, Room: room.Code, Effect: effect.clone()})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, Effect: effect.clone()}))
}

func (h *Hub) removeEffect(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}
	if !h.requireDM(room, cmd) {
		return
	}
	if cmd.EffectID == "" {
		cmd.Client.send(errAck(cmd.Seq, ErrCodeBadID, "effect id is required"))
		return
	}
	// Removing an absent effect still succeeds and still broadcasts; clients
	// converge on "gone" either way.
	delete(room.State.Effects, cmd.EffectID)

	h.broadcast(room, &Event{Kind: EventEffectRemove, Room: room.Code, EffectID: cmd.EffectID})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true}))
}

func (h *Hub) logEvent(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}

	entry := &LogEntry{
		ID:         uuid.NewString(),
		At:         nowMillis(),
		Type:       truncate(cmd.Log.Type, MaxKindLen),
		Text:       cmd.Log.Text,
		Visibility: cmd.Log.Visibility,
		By:         cmd.Client.ID,
	}
	// Visibility is advisory metadata; delivery is not filtered by it.
	h.broadcast(room, &Event{Kind: EventLogged, Room: room.Code, Entry: entry})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, Entry: entry}))
}

func (h *Hub) logAttack(cmd *Command) {
	room, ok := h.room(cmd)
	if !ok {
		return
	}

	entry := &LogEntry{
		ID:         uuid.NewString(),
		At:         nowMillis(),
		Type:       "attack",
		Text:       cmd.Attack.Text,
		Visibility: cmd.Attack.Visibility,
		By:         cmd.Client.ID,
		AttackerID: cmd.Attack.AttackerID,
		TargetID:   cmd.Attack.TargetID,
	}
	if t, ok := room.State.Tokens[cmd.Attack.AttackerID]; ok {
		entry.AttackerName = t.Name
	}
	if t, ok := room.State.Tokens[cmd.Attack.TargetID]; ok {
		entry.TargetName = t.Name
	}

	h.broadcast(room, &Event{Kind: EventLogged, Room: room.Code, Entry: entry})
	cmd.Client.send(ackEvent(cmd.Seq, Ack{OK: true, Entry: entry}))
}

// cleanup runs once per disconnected connection: in every room the client
// joined, its player token goes away and, if it held the DM seat, the seat
// empties. Each room sees exactly one token:remove and at most one room:dm.
func (h *Hub) cleanup(c *Client) {
	for _, room := range c.rooms {
		if _, exists := room.State.Tokens[c.ID]; exists {
			delete(room.State.Tokens, c.ID)
			h.broadcast(room, &Event{Kind: EventTokenRemove, Room: room.Code, TokenID: c.ID})
		}
		if room.IsDM(c) {
			room.ClearDM()
			h.broadcast(room, &Event{Kind: EventRoomDM, Room: room.Code, DMID: ""})
		}
		room.RemoveMember(c)
	}
	c.rooms = make(map[string]*Room)
	// The Events channel stays open: the transport's write loop exits on
	// context cancellation, and late commands from this connection may still
	// be queued behind the unregister.
	c.done = true
	h.log.Debug().Str("client_id", c.ID).Msg("client cleaned up")
}

func spawnCoord() float64 {
	return spawnMin + rand.Float64()*(spawnMax-spawnMin)
}
