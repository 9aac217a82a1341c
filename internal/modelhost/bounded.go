package modelhost

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Bounded limits how many Generate calls reach the compute device at once.
type Bounded struct {
	next Generator
	sem  *semaphore.Weighted
}

var _ Generator = (*Bounded)(nil)

// NewBounded wraps next so at most limit generations are in flight. A limit
// below one is treated as one.
func NewBounded(next Generator, limit int) *Bounded {
	if limit < 1 {
		limit = 1
	}
	return &Bounded{
		next: next,
		sem:  semaphore.NewWeighted(int64(limit)),
	}
}

// Generate waits for a free slot, honouring ctx, then delegates.
func (b *Bounded) Generate(ctx context.Context, text string, opts Options) ([]string, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for generation slot: %w", err)
	}
	defer b.sem.Release(1)
	return b.next.Generate(ctx, text, opts)
}

func (b *Bounded) Device() string {
	return b.next.Device()
}

func (b *Bounded) Model() string {
	return b.next.Model()
}
