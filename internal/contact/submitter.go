package contact

import (
	"context"
	"time"
)

// DelaySubmitter stands in for a real delivery by waiting a fixed time.
type DelaySubmitter struct {
	Delay time.Duration
}

func (d DelaySubmitter) Submit(ctx context.Context, _ FormState) error {
	if d.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type SubmitterFunc func(ctx context.Context, f FormState) error

func (fn SubmitterFunc) Submit(ctx context.Context, f FormState) error { return fn(ctx, f) }
