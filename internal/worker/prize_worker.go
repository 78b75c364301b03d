package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
)

// PrizeProcessor performs one payout attempt for a queue item
type PrizeProcessor interface {
	Process(ctx context.Context, id uuid.UUID) error
}

// PrizeWorker owns the retry timers of the payout pipeline. Each scheduled
// item gets at most one pending timer; rescheduling replaces it.
type PrizeWorker struct {
	BaseWorker
	processor PrizeProcessor
}

// NewPrizeWorker creates a new PrizeWorker
func NewPrizeWorker(processor PrizeProcessor) *PrizeWorker {
	w := &PrizeWorker{processor: processor}
	w.init()
	return w
}

// ScheduleProcess runs the item's next payout attempt after delay. A
// non-positive delay executes immediately.
func (w *PrizeWorker) ScheduleProcess(id uuid.UUID, delay time.Duration) {
	if delay <= 0 {
		w.execute(id)
		return
	}

	w.stopTimer(id)

	timer := time.AfterFunc(delay, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		w.execute(id)
		w.removeTimer(id)
	})
	w.registerTimer(id, timer)

	logger.FromContext(context.Background()).Debug(LogMsgPrizeRetryScheduled, "item_id", id, "delay", delay)
}

// execute runs one attempt in a tracked goroutine
func (w *PrizeWorker) execute(id uuid.UUID) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx := context.Background()
		if err := w.processor.Process(ctx, id); err != nil {
			logger.FromContext(ctx).Error(LogMsgPrizeProcessFailed, "item_id", id, "error", err)
		}
	}()
}

// Shutdown cancels pending timers and waits for in-flight attempts
func (w *PrizeWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, "prize worker")
}
