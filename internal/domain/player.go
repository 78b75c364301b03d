package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player is a participant holding a ticket in one game.
// Unique per (GameID, UserID); the ticket is immutable after creation.
type Player struct {
	ID       uuid.UUID `json:"id"`
	GameID   uuid.UUID `json:"game_id"`
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Ticket   Ticket    `json:"ticket"`
	JoinedAt time.Time `json:"joined_at"`
}
