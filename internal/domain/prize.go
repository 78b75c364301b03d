package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrizeStatus is the state of a prize-distribution queue item
type PrizeStatus string

const (
	PrizeStatusPending    PrizeStatus = "PENDING"
	PrizeStatusProcessing PrizeStatus = "PROCESSING"
	PrizeStatusCompleted  PrizeStatus = "COMPLETED"
	PrizeStatusFailed     PrizeStatus = "FAILED"
	PrizeStatusDeadLetter PrizeStatus = "DEAD_LETTER"
)

// PrizeQueueItem is one durable at-least-once payout task.
// Unique per (UserID, GameID, Category). State machine:
// PENDING -> PROCESSING -> (COMPLETED | PENDING on retry | DEAD_LETTER after
// the attempt cap). COMPLETED is terminal.
type PrizeQueueItem struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	GameID         uuid.UUID   `json:"game_id"`
	Category       Category    `json:"category"`
	PrizeValue     int         `json:"prize_value"`
	Status         PrizeStatus `json:"status"`
	Attempts       int         `json:"attempts"`
	LastAttempt    *time.Time  `json:"last_attempt,omitempty"`
	Error          string      `json:"error,omitempty"`
	IdempotencyKey string      `json:"idempotency_key"`
	CreatedAt      time.Time   `json:"created_at"`
}
