package hotstate

import "context"

// SweepJob periodically removes hot state left behind by finished games.
// Scheduled from the worker pool; satisfies its Job interface.
type SweepJob struct {
	store *Store
}

// NewSweepJob creates the sweep job
func NewSweepJob(store *Store) *SweepJob {
	return &SweepJob{store: store}
}

// Process runs one sweep pass
func (j *SweepJob) Process(ctx context.Context) error {
	_, err := j.store.SweepFinished(ctx)
	return err
}
