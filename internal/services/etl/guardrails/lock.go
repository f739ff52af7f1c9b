// Package guardrails holds cross cutting safety helpers for the load
package guardrails

import (
	"context"

	"loteria/internal/modkit/repokit"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/store"
)

// LoadLockKey is the advisory lock key every load takes ("loteria" in ascii)
const LoadLockKey int64 = 0x6c6f7465726961

// ErrLoadHeld signals another load owns the target tables right now
var ErrLoadHeld = perr.Conflictf("another load holds the advisory lock")

// AdvisoryLock returns a begin hook that takes a transaction scoped advisory
// lock on key. It never waits: a held lock fails the transaction with
// ErrLoadHeld. Postgres releases the lock at commit or rollback
func AdvisoryLock(key int64) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		claimed, err := store.Scalar[bool](ctx, q, `select pg_try_advisory_xact_lock($1)`, key)
		if err != nil {
			return perr.FromPostgres(err, "advisory lock")
		}
		if !claimed {
			return ErrLoadHeld
		}
		return nil
	}
}
