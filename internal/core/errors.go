package core

// Wire error codes. Every failure is reported to the requesting client as a
// negative ack carrying one of these; nothing here is fatal to the process.
const (
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodeNotDM            = "NOT_DM"
	ErrCodeTokenNotFound    = "TOKEN_NOT_FOUND"
	ErrCodeOnlyEnemyMovable = "ONLY_ENEMY_MOVABLE"
	ErrCodeBadID            = "BAD_ID"
	ErrCodeWrongPassword    = "WRONG_PASSWORD"
	ErrCodeDMNotConfigured  = "DM_PASSWORD_NOT_CONFIGURED"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInternal         = "INTERNAL"
)

// RoomError wraps a wire code and a human-readable message.
type RoomError struct {
	Code    string
	Message string
}

func (e *RoomError) Error() string {
	return e.Message
}

func roomError(code, msg string) *RoomError {
	return &RoomError{Code: code, Message: msg}
}
