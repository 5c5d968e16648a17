package progress

import (
	"context"
	"math"
	"sync"
)

// commitThreshold is the minimum absolute change that triggers a store
// write during continuous scroll.
const commitThreshold = 0.01

type key struct {
	workID    string
	chapterID int64
}

// Committer coalesces high-frequency progress updates from the reading
// surface: Observe writes through only when the value moved at least the
// threshold since the last committed write, Flush always writes (leaving
// a chapter, app background). The store underneath stays a dumb upsert.
type Committer struct {
	svc Service

	mu        sync.Mutex
	committed map[key]float64
}

func NewCommitter(svc Service) *Committer {
	return &Committer{
		svc:       svc,
		committed: make(map[key]float64),
	}
}

// Observe records a progress sample, writing to the store only when it
// differs enough from the last committed value.
func (c *Committer) Observe(ctx context.Context, workID string, chapterID int64, progress float64) error {
	k := key{workID: workID, chapterID: chapterID}

	c.mu.Lock()
	last, seen := c.committed[k]
	c.mu.Unlock()

	if seen && math.Abs(progress-last) < commitThreshold {
		return nil
	}
	return c.commit(ctx, k, progress)
}

// Flush commits the current value unconditionally.
func (c *Committer) Flush(ctx context.Context, workID string, chapterID int64, progress float64) error {
	return c.commit(ctx, key{workID: workID, chapterID: chapterID}, progress)
}

func (c *Committer) commit(ctx context.Context, k key, progress float64) error {
	if err := c.svc.Set(ctx, k.workID, k.chapterID, progress); err != nil {
		return err
	}
	c.mu.Lock()
	c.committed[k] = progress
	c.mu.Unlock()
	return nil
}
