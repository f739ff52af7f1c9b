package guardrails

import (
	"context"
	"time"
)

// Timeouts is the optional budget bundle for a run.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Load caps one commit attempt, transaction included
	Load time.Duration

	// Mirror caps the clickhouse rebuild
	Mirror time.Duration
}

// ForLoad returns a sub context for one commit attempt bounded by Load and any remaining parent budget
func ForLoad(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Load)
}

// ForMirror returns a sub context for the mirror rebuild bounded by Mirror and any remaining parent budget
func ForMirror(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Mirror)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of d and the parent remainder; it never extends the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
