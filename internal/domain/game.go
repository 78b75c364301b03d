package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusLobby     GameStatus = "LOBBY"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusCompleted GameStatus = "COMPLETED"
	GameStatusCancelled GameStatus = "CANCELLED"
)

// PrizeMap maps win categories to their prize values
type PrizeMap map[Category]int

// Game represents a single tambola game run by one organizer
type Game struct {
	ID            uuid.UUID  `json:"id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Status        GameStatus `json:"status"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	Prizes        PrizeMap   `json:"prizes"`
	CalledNumbers []int      `json:"called_numbers"`
	CurrentNumber *int       `json:"current_number,omitempty"`
	PlayerCount   int        `json:"player_count"`
}

// IsJoinable reports whether new players may still enter the game
func (g *Game) IsJoinable() bool {
	return g.Status == GameStatusLobby
}

// HasCalled reports whether n has already been drawn in this game
func (g *Game) HasCalled(n int) bool {
	for _, c := range g.CalledNumbers {
		if c == n {
			return true
		}
	}
	return false
}

// CalledSet returns the called numbers as a membership set
func (g *Game) CalledSet() map[int]bool {
	set := make(map[int]bool, len(g.CalledNumbers))
	for _, n := range g.CalledNumbers {
		set[n] = true
	}
	return set
}

// CanTransition reports whether the status change obeys the game state machine.
// LOBBY -> ACTIVE -> COMPLETED, with CANCELLED reachable from LOBBY and ACTIVE.
func (g *Game) CanTransition(next GameStatus) bool {
	switch g.Status {
	case GameStatusLobby:
		return next == GameStatusActive || next == GameStatusCancelled
	case GameStatusActive:
		return next == GameStatusCompleted || next == GameStatusCancelled
	default:
		return false
	}
}
