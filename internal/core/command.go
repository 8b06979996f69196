package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom allocates a new room code.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom joins the caller and spawns its player token.
	CommandJoinRoom
	// CommandMoveToken moves the caller's token, or an enemy if caller is DM.
	CommandMoveToken
	// CommandAddEnemy places a DM-controlled enemy token.
	CommandAddEnemy
	// CommandRemoveToken deletes a token by id (DM only).
	CommandRemoveToken
	// CommandDMLogin claims DM authority with the shared secret.
	CommandDMLogin
	// CommandSetMap replaces the room's map descriptor (DM only).
	CommandSetMap
	// CommandAddEffect places an effect overlay (DM only).
	CommandAddEffect
	// CommandRemoveEffect deletes an effect by id (DM only).
	CommandRemoveEffect
	// CommandLogEvent broadcasts a narrative event.
	CommandLogEvent
	// CommandLogAttack broadcasts an attack event with resolved names.
	CommandLogAttack
)

// JoinParams carries the optional appearance fields for the player token.
type JoinParams struct {
	Name   string
	ImgURL string
	Color  string
}

// MoveParams targets a token by id; an empty ID means the caller's own token.
type MoveParams struct {
	ID string
	X  float64
	Y  float64
}

// EnemyParams describes a new enemy token.
type EnemyParams struct {
	Name   string
	ImgURL string
	X      float64
	Y      float64
}

// MapParams is the requested map descriptor, clamped by the handler.
type MapParams struct {
	URL    string
	Width  float64
	Height float64
}

// EffectParams describes a new effect overlay.
type EffectParams struct {
	Kind   string
	X      float64
	Y      float64
	Radius float64
	Color  string
}

// LogParams is a freeform narrative event.
type LogParams struct {
	Type       string
	Text       string
	Visibility string
}

// AttackParams references attacker and target tokens by id.
type AttackParams struct {
	AttackerID string
	TargetID   string
	Text       string
	Visibility string
}

// Command is one action requested by a client. Seq correlates the ack the
// hub sends back; exactly one params field matching Kind is set.
type Command struct {
	Kind   CommandKind
	Client *Client
	Seq    int64
	Room   string

	Join     *JoinParams
	Move     *MoveParams
	Enemy    *EnemyParams
	TokenID  string
	Password string
	Map      *MapParams
	Effect   *EffectParams
	EffectID string
	Log      *LogParams
	Attack   *AttackParams
}
