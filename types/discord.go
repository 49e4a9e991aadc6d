package types

import (
	"time"

	"github.com/google/uuid"
)

// AskMessage is a prompt addressed to Mathy by mentioning the bot.
type AskMessage struct {
	UserID    string
	Username  string
	ChannelID string
	MessageID string
	Text      string
	Timestamp time.Time
	TraceID   uuid.UUID
}

// Interaction is one answered prompt. Rows are only ever inserted.
type Interaction struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Question  string    `db:"question"`
	Response  string    `db:"response"`
	Timestamp time.Time `db:"timestamp"`
}
