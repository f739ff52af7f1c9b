package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"loteria/internal/platform/store"
	kit "loteria/internal/platform/testkit"
)

type recQ struct{ sqls []string }

func (f *recQ) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return nil, nil
}
func (f *recQ) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	f.sqls = append(f.sqls, sql)
	return nil, nil
}
func (f *recQ) QueryRow(_ context.Context, sql string, _ ...any) store.Row {
	f.sqls = append(f.sqls, sql)
	return nil
}

type recTx struct {
	recQ
	txCalls int
	fnErr   error
}

func (r *recTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	r.txCalls++
	r.fnErr = fn(&r.recQ)
	return r.fnErr
}

func TestBindFuncAndMustBind(t *testing.T) {
	t.Parallel()
	b := BindFunc[string](func(Queryer) string { return "bound" })
	if got := MustBind[string](b, &recQ{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
	kit.MustPanic(t, func() { _ = MustBind[string](b, nil) })
}

func TestWithBeginHooks_OrderAndAbort(t *testing.T) {
	t.Parallel()

	inner := &recTx{}
	var order []string
	hook := func(name string, err error) BeginHook {
		return func(ctx context.Context, q Queryer) error {
			order = append(order, name)
			return err
		}
	}

	tx := WithBeginHooks(inner, hook("a", nil), StatementTimeout(2*time.Second), hook("b", nil))
	err := WithTx(context.Background(), tx, func(q Queryer) error {
		order = append(order, "fn")
		return nil
	})
	if err != nil || inner.txCalls != 1 {
		t.Fatalf("tx err=%v calls=%d", err, inner.txCalls)
	}
	if len(order) != 3 || order[0] != "a" || order[2] != "fn" {
		t.Fatalf("order = %v", order)
	}
	if len(inner.sqls) != 1 || inner.sqls[0] != "SET LOCAL statement_timeout = 2000" {
		t.Fatalf("timeout hook sql = %v", inner.sqls)
	}

	boom := errors.New("locked")
	order = nil
	tx = WithBeginHooks(&recTx{}, hook("a", boom))
	err = tx.Tx(context.Background(), func(Queryer) error {
		order = append(order, "fn")
		return nil
	})
	if !errors.Is(err, boom) || len(order) != 1 {
		t.Fatalf("failing hook must abort before fn: err=%v order=%v", err, order)
	}
}

func TestStatementTimeoutZeroIsNoop(t *testing.T) {
	t.Parallel()
	q := &recQ{}
	if err := StatementTimeout(0)(context.Background(), q); err != nil || len(q.sqls) != 0 {
		t.Fatalf("zero timeout should not exec")
	}
}

func TestHookedTxDelegates(t *testing.T) {
	t.Parallel()
	inner := &recTx{}
	tx := WithBeginHooks(inner)
	_, _ = tx.Exec(context.Background(), "e")
	_, _ = tx.Query(context.Background(), "q")
	_ = tx.QueryRow(context.Background(), "r")
	if len(inner.sqls) != 3 {
		t.Fatalf("delegation calls = %v", inner.sqls)
	}
}
