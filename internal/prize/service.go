// Package prize drives the at-least-once payout pipeline: a durable queue
// row per win, a bounded-retry worker against the external payout API, and
// a reaper that recovers work lost to crashed instances.
package prize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/metrics"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/repository"
)

// Service defines the interface for prize distribution operations
type Service interface {
	EnqueueWin(ctx context.Context, userID uuid.UUID, winner *domain.Winner) (*domain.PrizeQueueItem, error)
	Process(ctx context.Context, id uuid.UUID) error
	Retry(ctx context.Context, id uuid.UUID) error
	ListByStatus(ctx context.Context, status domain.PrizeStatus, limit int) ([]domain.PrizeQueueItem, error)
	RecoverStale(ctx context.Context) ([]uuid.UUID, error)
	ReschedulePending(ctx context.Context) (int, error)

	// BindScheduler attaches the retry scheduler. Must be called before any
	// payout traffic; without it items are only picked up by the reaper.
	BindScheduler(sched Scheduler)
}

// Scheduler re-invokes Process after a delay. Bound after construction
// because the worker holding the timers needs the service first.
type Scheduler interface {
	ScheduleProcess(id uuid.UUID, delay time.Duration)
}

type service struct {
	repo   repository.PrizeQueue
	client PayoutClient
	sched  Scheduler
}

// NewService creates a new prize service
func NewService(repo repository.PrizeQueue, client PayoutClient) Service {
	return &service{repo: repo, client: client}
}

func (s *service) BindScheduler(sched Scheduler) {
	s.sched = sched
}

// EnqueueWin inserts the payout task for a committed winner and schedules
// its first processing. Idempotent per (user, game, category): re-enqueueing
// returns the first writer's row.
func (s *service) EnqueueWin(ctx context.Context, userID uuid.UUID, winner *domain.Winner) (*domain.PrizeQueueItem, error) {
	now := time.Now().UTC()
	item := &domain.PrizeQueueItem{
		ID:         uuid.New(),
		UserID:     userID,
		GameID:     winner.GameID,
		Category:   winner.Category,
		PrizeValue: winner.PrizeValue,
		Status:     domain.PrizeStatusPending,
		// Stable for the row's lifetime so the payout API deduplicates
		// across our retries
		IdempotencyKey: fmt.Sprintf("%s:%s:%s:%d", winner.GameID, userID, winner.Category, now.UnixNano()),
		CreatedAt:      now,
	}

	stored, err := s.repo.Enqueue(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToEnqueue, err)
	}

	metrics.PrizesEnqueued.Inc()
	logger.FromContext(ctx).Info(LogMsgPrizeEnqueued,
		"item_id", stored.ID, "game_id", stored.GameID, "user_id", userID, "category", stored.Category)

	if s.sched != nil {
		s.sched.ScheduleProcess(stored.ID, 0)
	}
	return stored, nil
}

// Process performs one payout attempt. Safe under concurrent invocation:
// the PENDING -> PROCESSING CAS admits exactly one worker per attempt.
// Failures below the attempt cap go back to PENDING with a scheduled retry;
// at the cap the item is dead-lettered.
func (s *service) Process(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToLoadItem, err)
	}
	if item.Status != domain.PrizeStatusPending {
		return nil
	}

	claimed, err := s.repo.CASStatus(ctx, id, domain.PrizeStatusPending, domain.PrizeStatusProcessing)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateItem, err)
	}
	if !claimed {
		return nil
	}

	if err := s.client.Pay(ctx, item); err != nil {
		return s.recordFailure(ctx, item, err)
	}

	if err := s.repo.MarkCompleted(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateItem, err)
	}
	metrics.PrizePayouts.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info(LogMsgPayoutCompleted, "item_id", id, "attempts", item.Attempts+1)
	return nil
}

func (s *service) recordFailure(ctx context.Context, item *domain.PrizeQueueItem, cause error) error {
	log := logger.FromContext(ctx)
	metrics.PrizePayouts.WithLabelValues(metrics.ResultFailure).Inc()

	attempts := item.Attempts + 1
	now := time.Now().UTC()

	if attempts >= MaxAttempts {
		if err := s.repo.RecordFailure(ctx, item.ID, attempts, cause.Error(), domain.PrizeStatusDeadLetter, now); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToUpdateItem, err)
		}
		metrics.PrizesDeadLettered.Inc()
		log.Error(LogMsgPayoutDeadLettered, "item_id", item.ID, "attempts", attempts, "error", cause)
		return nil
	}

	if err := s.repo.RecordFailure(ctx, item.ID, attempts, cause.Error(), domain.PrizeStatusPending, now); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateItem, err)
	}

	delay := RetryDelays[attempts-1]
	log.Warn(LogMsgPayoutAttemptFailed, "item_id", item.ID, "attempts", attempts, "retry_in", delay, "error", cause)
	if s.sched != nil {
		s.sched.ScheduleProcess(item.ID, delay)
	}
	return nil
}

// Retry manually resets a dead-lettered or failed item and schedules it
func (s *service) Retry(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToLoadItem, err)
	}
	if item.Status != domain.PrizeStatusDeadLetter && item.Status != domain.PrizeStatusFailed {
		return domain.ErrPrizeNotRetryable
	}

	if err := s.repo.ResetForRetry(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPrizeItemNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateItem, err)
	}

	logger.FromContext(ctx).Info(LogMsgPayoutRetryReset, "item_id", id)
	if s.sched != nil {
		s.sched.ScheduleProcess(id, 0)
	}
	return nil
}

// ListByStatus exposes queue contents for the operational API
func (s *service) ListByStatus(ctx context.Context, status domain.PrizeStatus, limit int) ([]domain.PrizeQueueItem, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

// RecoverStale returns PROCESSING rows whose lease expired to PENDING and
// schedules them. Run periodically by the reaper.
func (s *service) RecoverStale(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.RecoverStale(ctx, ProcessingLease)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToRecoverStale, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	metrics.PrizesRecovered.Add(float64(len(ids)))
	logger.FromContext(ctx).Info(LogMsgStaleItemsRecovered, "count", len(ids))
	if s.sched != nil {
		for _, id := range ids {
			s.sched.ScheduleProcess(id, 0)
		}
	}
	return ids, nil
}

// ReschedulePending re-schedules PENDING items that have gone untouched for
// longer than OrphanAge. Their retry timer died with the process that set
// it; the CAS in Process makes double scheduling harmless.
func (s *service) ReschedulePending(ctx context.Context) (int, error) {
	items, err := s.repo.ListByStatus(ctx, domain.PrizeStatusPending, ReaperBatchSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToLoadItem, err)
	}

	log := logger.FromContext(ctx)
	cutoff := time.Now().UTC().Add(-OrphanAge)
	count := 0
	for _, item := range items {
		last := item.CreatedAt
		if item.LastAttempt != nil {
			last = *item.LastAttempt
		}
		if last.After(cutoff) {
			continue
		}
		if s.sched != nil {
			s.sched.ScheduleProcess(item.ID, 0)
		}
		log.Debug(LogMsgOrphanRescheduled, "item_id", item.ID)
		count++
	}
	return count, nil
}

// ReaperJob is the periodic recovery pass, run from the scheduler
type ReaperJob struct {
	svc Service
}

// NewReaperJob creates the recovery job
func NewReaperJob(svc Service) *ReaperJob {
	return &ReaperJob{svc: svc}
}

// Process recovers stale leases and reschedules orphaned pending items
func (j *ReaperJob) Process(ctx context.Context) error {
	if _, err := j.svc.RecoverStale(ctx); err != nil {
		return err
	}
	_, err := j.svc.ReschedulePending(ctx)
	return err
}
