package proto

import "encoding/json"

// Inbound is the envelope for requests coming from the client. Seq is a
// client-chosen number echoed back on the matching ack.
type Inbound struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq,omitempty"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeRoomCreate   = "room:create"
	InboundTypeRoomJoin     = "room:join"
	InboundTypeTokenMove    = "token:move"
	InboundTypeAddEnemy     = "token:add-enemy"
	InboundTypeTokenRemove  = "token:remove"
	InboundTypeDMLogin      = "dm:login"
	InboundTypeMapSet       = "map:set"
	InboundTypeEffectAdd    = "effect:add"
	InboundTypeEffectRemove = "effect:remove"
	InboundTypeEventLog     = "event:log"
	InboundTypeEventAttack  = "event:attack"

	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventTokenUpsert  = "token:upsert"
	EventTokenMove    = "token:move"
	EventTokenRemove  = "token:remove"
	EventRoomDM       = "room:dm"
	EventMapSet       = "map:set"
	EventEffectUpsert = "effect:upsert"
	EventEffectRemove = "effect:remove"
	EventNew          = "event:new"
)

// JoinData requests joining a room; appearance fields are optional.
type JoinData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	ImgURL string `json:"imgUrl,omitempty"`
	Color  string `json:"color,omitempty"`
}

// MoveData moves a token. ID defaults to the caller's own token. The
// coordinates are deliberately untyped: non-numeric input clamps to the map
// edge instead of failing the request.
type MoveData struct {
	RoomID string `json:"roomId"`
	ID     string `json:"id,omitempty"`
	X      any    `json:"x"`
	Y      any    `json:"y"`
}

// AddEnemyData places a new enemy token (DM only).
type AddEnemyData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	ImgURL string `json:"imgUrl,omitempty"`
	X      any    `json:"x"`
	Y      any    `json:"y"`
}

// RemoveData deletes a token or effect by id.
type RemoveData struct {
	RoomID string `json:"roomId"`
	ID     string `json:"id"`
}

// DMLoginData claims the DM seat with the shared secret.
type DMLoginData struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

// MapSetData replaces the room map (DM only).
type MapSetData struct {
	RoomID string `json:"roomId"`
	URL    string `json:"url"`
	Width  any    `json:"width"`
	Height any    `json:"height"`
}

// EffectFields is the effect description nested in an effect:add request.
type EffectFields struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color,omitempty"`
}

// EffectAddData places an effect overlay (DM only).
type EffectAddData struct {
	RoomID string       `json:"roomId"`
	Effect EffectFields `json:"effect"`
}

// EventLogData is a freeform narrative event.
type EventLogData struct {
	RoomID     string `json:"roomId"`
	Type       string `json:"eventType,omitempty"`
	Text       string `json:"text,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// EventAttackData logs an attack between two tokens.
type EventAttackData struct {
	RoomID     string `json:"roomId"`
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Text       string `json:"text,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// Outbound is the envelope for everything the server sends.
type Outbound struct {
	Type  string `json:"type"`
	Seq   int64  `json:"seq,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// AckData answers one request.
type AckData struct {
	OK     bool        `json:"ok"`
	Error  *Error      `json:"error,omitempty"`
	RoomID string      `json:"roomId,omitempty"`
	State  *StateData  `json:"state,omitempty"`
	Token  *TokenData  `json:"token,omitempty"`
	Effect *EffectData `json:"effect,omitempty"`
	Event  *EventData  `json:"event,omitempty"`
}

// TokenData is a token as serialized to clients.
type TokenData struct {
	ID      string  `json:"id"`
	Kind    string  `json:"kind"`
	OwnerID string  `json:"ownerId,omitempty"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ImgURL  string  `json:"imgUrl,omitempty"`
	Color   string  `json:"color,omitempty"`
}

// MapData is the map descriptor as serialized to clients.
type MapData struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EffectData is an effect as serialized to clients.
type EffectData struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color,omitempty"`
}

// StateData is the full room snapshot delivered on join.
type StateData struct {
	Map     MapData      `json:"map"`
	Tokens  []TokenData  `json:"tokens"`
	Effects []EffectData `json:"effects"`
	DMID    *string      `json:"dmId"`
}

// EventData is a narrative log entry on the wire.
type EventData struct {
	ID           string `json:"id"`
	At           int64  `json:"at"`
	Type         string `json:"eventType"`
	Text         string `json:"text,omitempty"`
	Visibility   string `json:"visibility,omitempty"`
	By           string `json:"by"`
	AttackerID   string `json:"attackerId,omitempty"`
	AttackerName string `json:"attackerName,omitempty"`
	TargetID     string `json:"targetId,omitempty"`
	TargetName   string `json:"targetName,omitempty"`
}

// TokenMoveData announces a token's new position.
type TokenMoveData struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// IDData announces a removed token or effect.
type IDData struct {
	ID string `json:"id"`
}

// DMData announces the current DM; null means the seat is empty.
type DMData struct {
	DMID *string `json:"dmId"`
}

// Error describes a request or protocol failure.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
