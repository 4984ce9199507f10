package domain

// Reject is a policy rejection surfaced to exactly one connection.
// It never aborts processing for anyone else.
type Reject struct {
	Code    string
	Message string
}

func (r *Reject) Error() string { return r.Code }

var (
	ErrInvalidRoomCode = &Reject{Code: "INVALID_ROOM_CODE", Message: "room code must be 6 letters or digits"}
	ErrRoomNotFound    = &Reject{Code: "ROOM_NOT_FOUND", Message: "you are not in a room"}
	ErrRoomLocked      = &Reject{Code: "ROOM_LOCKED", Message: "room is locked by the host"}
	ErrRoomFull        = &Reject{Code: "ROOM_FULL", Message: "room is full"}
	ErrAlreadyJoined   = &Reject{Code: "ALREADY_JOINED", Message: "connection already joined a room"}
	ErrInvalidName     = &Reject{Code: "INVALID_NAME", Message: "display name is empty or too long"}
	ErrEmptyMessage    = &Reject{Code: "EMPTY_MESSAGE", Message: "message is empty"}
	ErrMessageTooLong  = &Reject{Code: "MESSAGE_TOO_LONG", Message: "message is too long"}
	ErrRateLimited     = &Reject{Code: "RATE_LIMITED", Message: "too many events, slow down"}
)
