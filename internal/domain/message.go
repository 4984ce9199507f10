package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ChatMessage is one entry in a room's recent-message buffer. IDs are
// ULIDs so replayed history sorts the same way it was produced.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   PeerID    `json:"senderId,omitempty"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	System     bool      `json:"system,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

func NewMessageID() string {
	return ulid.Make().String()
}

// NewSystemMessage builds a server-authored chat line ("<name> joined").
func NewSystemMessage(text string) ChatMessage {
	return ChatMessage{
		ID:         NewMessageID(),
		SenderName: "system",
		Text:       text,
		System:     true,
		SentAt:     time.Now(),
	}
}
