package domain

type RoomCode string

const (
	// RoomCodeLength is the fixed length of a room code, e.g. "ABC123".
	RoomCodeLength = 6

	// RoomCodeAlphabet is the character class room codes are drawn from.
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)
