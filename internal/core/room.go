package core

// Room binds a code to its state, members and DM authority. All fields are
// owned by the hub goroutine; nothing here locks.
type Room struct {
	Code       string
	State      *RoomState
	dm         *Client
	secretHash []byte
	members    map[*Client]struct{}
}

// NewRoom creates an empty room. secretHash may be nil, in which case DM
// login is permanently rejected for this room.
func NewRoom(code string, secretHash []byte) *Room {
	return &Room{
		Code:       code,
		State:      NewRoomState(),
		secretHash: secretHash,
		members:    make(map[*Client]struct{}),
	}
}

// SecretHash returns the DM secret hash, nil when no secret is configured.
func (r *Room) SecretHash() []byte {
	return r.secretHash
}

// IsDM reports whether c currently holds DM authority in this room.
func (r *Room) IsDM(c *Client) bool {
	return r.dm != nil && r.dm == c
}

// DMID returns the DM's connection id, or "" when the seat is empty.
func (r *Room) DMID() string {
	if r.dm == nil {
		return ""
	}
	return r.dm.ID
}

// SetDM assigns DM authority. The room field and the client-visible state
// field change together so the two copies can never disagree.
func (r *Room) SetDM(c *Client) {
	r.dm = c
	r.State.DMID = c.ID
}

// ClearDM drops DM authority, keeping both copies in sync.
func (r *Room) ClearDM() {
	r.dm = nil
	r.State.DMID = ""
}

// AddMember joins c to the room's broadcast group. Returns false if already
// a member.
func (r *Room) AddMember(c *Client) bool {
	if _, ok := r.members[c]; ok {
		return false
	}
	r.members[c] = struct{}{}
	return true
}

// RemoveMember drops c from the broadcast group.
func (r *Room) RemoveMember(c *Client) {
	delete(r.members, c)
}

// HasMember reports whether c is joined to the room.
func (r *Room) HasMember(c *Client) bool {
	_, ok := r.members[c]
	return ok
}

// MemberCount returns the number of joined connections.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Broadcast emits an event to every member, sender included.
func (r *Room) Broadcast(ev *Event) {
	for c := range r.members {
		c.send(ev)
	}
}

// BroadcastExcept emits an event to every member but the sender.
func (r *Room) BroadcastExcept(sender *Client, ev *Event) {
	for c := range r.members {
		if c == sender {
			continue
		}
		c.send(ev)
	}
}
