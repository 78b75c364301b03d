package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// PrizeQueue defines durable access to the prize-distribution queue
type PrizeQueue interface {
	// Enqueue inserts a PENDING item. Idempotent on (user_id, game_id,
	// category): on conflict the existing row is returned unchanged, so the
	// first writer's prize value wins.
	Enqueue(ctx context.Context, item *domain.PrizeQueueItem) (*domain.PrizeQueueItem, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.PrizeQueueItem, error)

	// CASStatus transitions status from->to; reports whether the row changed
	CASStatus(ctx context.Context, id uuid.UUID, from, to domain.PrizeStatus) (bool, error)

	// MarkCompleted finalizes a successfully paid PROCESSING item and counts
	// the winning attempt
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error

	// RecordFailure sets attempts, last error and the resulting status
	// (PENDING for a retryable failure, DEAD_LETTER once exhausted)
	RecordFailure(ctx context.Context, id uuid.UUID, attempts int, errMsg string, status domain.PrizeStatus, at time.Time) error

	// ResetForRetry moves a DEAD_LETTER or FAILED item back to PENDING with
	// attempts zeroed
	ResetForRetry(ctx context.Context, id uuid.UUID) error

	// RecoverStale returns PROCESSING rows older than the lease to PENDING
	// and reports their ids
	RecoverStale(ctx context.Context, lease time.Duration) ([]uuid.UUID, error)

	ListByStatus(ctx context.Context, status domain.PrizeStatus, limit int) ([]domain.PrizeQueueItem, error)
}
