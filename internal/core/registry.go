package core

import (
	"crypto/rand"
	"fmt"
	"strings"

	"tabletop-server/internal/auth"
)

// roomCodeAlphabet is the 32-symbol set room codes draw from. Visually
// confusable characters (I, O, 0, 1) are excluded.
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6

	maxCodeAttempts = 32
)

// Registry owns all live rooms, keyed by room code. It is constructed once
// per server (or per test) and handed to the hub; there is no package-level
// instance.
type Registry struct {
	rooms      map[string]*Room
	secretHash []byte
}

// NewRegistry builds an empty registry. dmSecret is hashed once here; the
// resulting hash is shared by every room the registry creates. An empty
// secret leaves the hash nil, which disables DM login entirely.
func NewRegistry(dmSecret string) (*Registry, error) {
	reg := &Registry{rooms: make(map[string]*Room)}
	if dmSecret != "" {
		hash, err := auth.HashSecret(dmSecret)
		if err != nil {
			return nil, fmt.Errorf("hash dm secret: %w", err)
		}
		reg.secretHash = hash
	}
	return reg, nil
}

// Create generates a fresh room code, retrying on collision, and stores a
// new empty room under it.
func (g *Registry) Create() (*Room, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := newRoomCode()
		if err != nil {
			return nil, err
		}
		if _, taken := g.rooms[code]; taken {
			continue
		}
		room := NewRoom(code, g.secretHash)
		g.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("room code space exhausted after %d attempts", maxCodeAttempts)
}

// Find looks a room up by code, case-insensitively.
func (g *Registry) Find(code string) (*Room, bool) {
	room, ok := g.rooms[strings.ToUpper(code)]
	return room, ok
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	return len(g.rooms)
}

func newRoomCode() (string, error) {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf), nil
}
