package guardrails

import (
	"context"
	"errors"
	"testing"
	"time"

	"loteria/internal/modkit/repokit"
	perr "loteria/internal/platform/errors"
)

type boolRow struct {
	v   bool
	err error
}

func (r boolRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*bool)) = r.v
	return nil
}

type lockQ struct {
	repokit.Queryer
	row  boolRow
	sql  string
	args []any
}

func (q *lockQ) QueryRow(_ context.Context, sql string, args ...any) repokit.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestAdvisoryLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	q := &lockQ{row: boolRow{v: true}}
	if err := AdvisoryLock(LoadLockKey)(ctx, q); err != nil {
		t.Fatalf("claimed lock: %v", err)
	}
	if q.args[0] != LoadLockKey || q.sql == "" {
		t.Fatalf("lock query = %q %v", q.sql, q.args)
	}

	q = &lockQ{row: boolRow{v: false}}
	err := AdvisoryLock(LoadLockKey)(ctx, q)
	if !errors.Is(err, ErrLoadHeld) || perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("held lock: %v", err)
	}
	if perr.ExitCode(err) != perr.ExitPersistence {
		t.Fatalf("held lock exit = %d", perr.ExitCode(err))
	}

	q = &lockQ{row: boolRow{err: errors.New("conn reset")}}
	if err := AdvisoryLock(LoadLockKey)(ctx, q); err == nil || errors.Is(err, ErrLoadHeld) {
		t.Fatalf("scan failure: %v", err)
	}
}

func TestTimeouts(t *testing.T) {
	t.Parallel()
	ctx, cancel := ForLoad(context.Background(), Timeouts{})
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("zero Load must not set a deadline")
	}
	cancel()

	parent, pc := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer pc()
	ctx, cancel = ForMirror(parent, Timeouts{Mirror: time.Hour})
	defer cancel()
	if rem := Remaining(ctx); rem <= 0 || rem > 50*time.Millisecond {
		t.Fatalf("child must not outlive parent: %v", rem)
	}

	ctx, cancel = ForLoad(context.Background(), Timeouts{Load: time.Minute})
	defer cancel()
	if rem := Remaining(ctx); rem <= 0 || rem > time.Minute {
		t.Fatalf("load budget = %v", rem)
	}

	done, dc := context.WithCancel(context.Background())
	dc()
	if Remaining(done) != 0 {
		t.Fatal("no deadline gives zero")
	}
}
