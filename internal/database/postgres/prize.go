package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/repository"
)

// PrizeQueueRepository implements the prize queue repository for PostgreSQL
type PrizeQueueRepository struct {
	db *pgxpool.Pool
}

// NewPrizeQueueRepository creates a new PrizeQueueRepository
func NewPrizeQueueRepository(db *pgxpool.Pool) repository.PrizeQueue {
	return &PrizeQueueRepository{db: db}
}

// Enqueue inserts a PENDING item; on a (user_id, game_id, category)
// collision the existing row is returned so the first writer wins.
func (r *PrizeQueueRepository) Enqueue(ctx context.Context, item *domain.PrizeQueueItem) (*domain.PrizeQueueItem, error) {
	query := `
		INSERT INTO prize_queue (item_id, user_id, game_id, category, prize_value, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, game_id, category) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		item.ID, item.UserID, item.GameID, string(item.Category), item.PrizeValue,
		string(item.Status), item.IdempotencyKey, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue prize item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.getByKey(ctx, item.UserID, item.GameID, item.Category)
	}
	return item, nil
}

// Get retrieves a queue item by id
func (r *PrizeQueueRepository) Get(ctx context.Context, id uuid.UUID) (*domain.PrizeQueueItem, error) {
	query := selectPrizeItem + ` WHERE item_id = $1`
	item, err := scanPrizeItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPrizeItemNotFound
		}
		return nil, fmt.Errorf("failed to get prize item: %w", err)
	}
	return item, nil
}

// CASStatus transitions from->to atomically; reports whether the row changed
func (r *PrizeQueueRepository) CASStatus(ctx context.Context, id uuid.UUID, from, to domain.PrizeStatus) (bool, error) {
	query := `
		UPDATE prize_queue
		SET status = $3, last_attempt = CASE WHEN $3 = 'PROCESSING' THEN NOW() ELSE last_attempt END
		WHERE item_id = $1 AND status = $2
	`
	tag, err := r.db.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update prize item status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted finalizes a successfully paid item. The winning attempt is
// counted so attempts reflects total tries made.
func (r *PrizeQueueRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE prize_queue
		SET status = 'COMPLETED', attempts = attempts + 1, last_attempt = $2, error = NULL
		WHERE item_id = $1 AND status = 'PROCESSING'
	`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to complete prize item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrizeItemNotFound
	}
	return nil
}

// RecordFailure stores the attempt outcome and resulting status
func (r *PrizeQueueRepository) RecordFailure(ctx context.Context, id uuid.UUID, attempts int, errMsg string, status domain.PrizeStatus, at time.Time) error {
	query := `
		UPDATE prize_queue
		SET status = $4, attempts = $2, error = $3, last_attempt = $5
		WHERE item_id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, attempts, errMsg, string(status), at)
	if err != nil {
		return fmt.Errorf("failed to record prize failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrizeItemNotFound
	}
	return nil
}

// ResetForRetry moves a dead-lettered or failed item back to PENDING
func (r *PrizeQueueRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE prize_queue
		SET status = 'PENDING', attempts = 0, error = NULL
		WHERE item_id = $1 AND status IN ('DEAD_LETTER', 'FAILED')
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset prize item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrizeNotRetryable
	}
	return nil
}

// RecoverStale returns PROCESSING rows whose lease expired to PENDING.
// Run by the reaper so a crashed worker never strands an item.
func (r *PrizeQueueRepository) RecoverStale(ctx context.Context, lease time.Duration) ([]uuid.UUID, error) {
	query := `
		UPDATE prize_queue
		SET status = 'PENDING'
		WHERE status = 'PROCESSING' AND last_attempt < NOW() - $1::interval
		RETURNING item_id
	`
	rows, err := r.db.Query(ctx, query, lease.String())
	if err != nil {
		return nil, fmt.Errorf("failed to recover stale prize items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recovered id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByStatus returns queue items in a given status, oldest first
func (r *PrizeQueueRepository) ListByStatus(ctx context.Context, status domain.PrizeStatus, limit int) ([]domain.PrizeQueueItem, error) {
	query := selectPrizeItem + ` WHERE status = $1 ORDER BY created_at LIMIT $2`
	rows, err := r.db.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize items: %w", err)
	}
	defer rows.Close()

	var items []domain.PrizeQueueItem
	for rows.Next() {
		item, err := scanPrizeItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PrizeQueueRepository) getByKey(ctx context.Context, userID, gameID uuid.UUID, category domain.Category) (*domain.PrizeQueueItem, error) {
	query := selectPrizeItem + ` WHERE user_id = $1 AND game_id = $2 AND category = $3`
	item, err := scanPrizeItem(r.db.QueryRow(ctx, query, userID, gameID, string(category)))
	if err != nil {
		return nil, fmt.Errorf("failed to get prize item by key: %w", err)
	}
	return item, nil
}

const selectPrizeItem = `
	SELECT item_id, user_id, game_id, category, prize_value, status,
	       attempts, last_attempt, error, idempotency_key, created_at
	FROM prize_queue`

func scanPrizeItem(row pgx.Row) (*domain.PrizeQueueItem, error) {
	var item domain.PrizeQueueItem
	var category, status string
	var lastAttempt pgtype.Timestamptz
	var errMsg pgtype.Text

	err := row.Scan(&item.ID, &item.UserID, &item.GameID, &category, &item.PrizeValue,
		&status, &item.Attempts, &lastAttempt, &errMsg, &item.IdempotencyKey, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Category = domain.Category(category)
	item.Status = domain.PrizeStatus(status)
	if lastAttempt.Valid {
		item.LastAttempt = &lastAttempt.Time
	}
	if errMsg.Valid {
		item.Error = errMsg.String
	}
	return &item, nil
}
