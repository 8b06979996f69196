package core

import (
	"math"
	"time"
)

// Field and map limits enforced by the mutation handlers.
const (
	MapMinSize = 200
	MapMaxSize = 20000

	MaxMapURLLen   = 800
	MaxTokenImgLen = 400
	MaxNameLen     = 24
	MaxColorLen    = 32
	MaxKindLen     = 32

	DefaultMapWidth  = 2000
	DefaultMapHeight = 1400
)

// TokenKind distinguishes player-owned tokens from DM-controlled enemies.
type TokenKind string

const (
	TokenKindPlayer TokenKind = "player"
	TokenKindEnemy  TokenKind = "enemy"
)

// MapDescriptor is the shared battle map every room member renders.
type MapDescriptor struct {
	URL    string
	Width  float64
	Height float64
}

// Token is a movable piece on the map. Player tokens are keyed by the
// connection that created them (one per connection, id == connection id);
// enemy tokens are DM-created and ownerless.
type Token struct {
	ID      string
	Kind    TokenKind
	OwnerID string
	Name    string
	X       float64
	Y       float64
	ImgURL  string
	Color   string
}

func (t *Token) clone() *Token {
	cp := *t
	return &cp
}

// Effect is a DM-placed overlay (area marker, aura, template). It has no
// lifecycle beyond add and remove.
type Effect struct {
	ID     string
	Kind   string
	X      float64
	Y      float64
	Radius float64
	Color  string
}

func (e *Effect) clone() *Effect {
	cp := *e
	return &cp
}

// LogEntry is a narrative event. It is stamped by the server, broadcast to
// the room and never stored in room state.
type LogEntry struct {
	ID           string
	At           int64 // unix millis
	Type         string
	Text         string
	Visibility   string
	By           string
	AttackerID   string
	AttackerName string
	TargetID     string
	TargetName   string
}

// RoomState is the authoritative per-room state replicated to clients.
// DMID mirrors the room's DM connection id so the join snapshot can carry it.
type RoomState struct {
	Map     MapDescriptor
	Tokens  map[string]*Token
	Effects map[string]*Effect
	DMID    string
}

// NewRoomState returns empty state with the default map.
func NewRoomState() *RoomState {
	return &RoomState{
		Map:     MapDescriptor{Width: DefaultMapWidth, Height: DefaultMapHeight},
		Tokens:  make(map[string]*Token),
		Effects: make(map[string]*Effect),
	}
}

// StateSnapshot is a point-in-time copy of room state, safe to hand to the
// transport layer while the hub keeps mutating the original.
type StateSnapshot struct {
	Map     MapDescriptor
	Tokens  []Token
	Effects []Effect
	DMID    string
}

// Snapshot copies the current state.
func (s *RoomState) Snapshot() *StateSnapshot {
	snap := &StateSnapshot{
		Map:     s.Map,
		Tokens:  make([]Token, 0, len(s.Tokens)),
		Effects: make([]Effect, 0, len(s.Effects)),
		DMID:    s.DMID,
	}
	for _, t := range s.Tokens {
		snap.Tokens = append(snap.Tokens, *t)
	}
	for _, e := range s.Effects {
		snap.Effects = append(snap.Effects, *e)
	}
	return snap
}

// clampCoord forces v into [lo, hi]. Non-numeric input (NaN from a coerced
// payload) lands on the lower bound rather than being rejected.
func clampCoord(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// truncate bounds s to max runes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
