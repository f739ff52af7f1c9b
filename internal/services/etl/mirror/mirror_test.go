package mirror

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"loteria/internal/core/refdata"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/store"
	"loteria/internal/services/etl/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type fakeCH struct {
	execs   []string
	inserts map[string][][]any
	failOn  string
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	if f.failOn != "" && strings.HasPrefix(sql, f.failOn) {
		return errors.New("code: 60, table is gone")
	}
	return nil
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	if f.inserts == nil {
		f.inserts = map[string][][]any{}
	}
	f.inserts[table] = rows
	if f.failOn == "INSERT "+table {
		return errors.New("append failed")
	}
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                               { return nil }

func sampleLoad() domain.Load {
	day := time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)
	return domain.Load{
		States: refdata.All(),
		Contests: []domain.ContestRow{{
			ID: 1, Number: 100,
			DrawDate:     pgtype.Date{Time: day, Valid: true},
			Collected:    decimal.NewNullDecimal(decimal.RequireFromString("10.5")),
			DrawnNumbers: []int{1, 60},
		}},
		Prizes:  []domain.PrizeRow{{ContestID: 1, Ordinal: 1, Winners: pgtype.Int8{Int64: 2, Valid: true}, Numbers: []int{1, 60}}},
		Winners: []domain.WinnerRow{{ContestID: 1, Ordinal: 1, Municipality: pgtype.Text{String: "Teresina", Valid: true}}},
	}
}

func TestReplace_StagesThenSwaps(t *testing.T) {
	t.Parallel()
	f := &fakeCH{}
	if err := New(f).Replace(context.Background(), sampleLoad()); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	firstSwap := -1
	lastCreate := -1
	for i, q := range f.execs {
		if strings.HasPrefix(q, "EXCHANGE TABLES") && firstSwap < 0 {
			firstSwap = i
		}
		if strings.HasPrefix(q, "CREATE TABLE ") {
			lastCreate = i
		}
	}
	if firstSwap < 0 || lastCreate > firstSwap {
		t.Fatalf("swaps must follow all staging work: %v", f.execs)
	}
	for _, name := range []string{"states", "contests", "prize_tiers", "winners"} {
		if _, ok := f.inserts[name+stagingSuffix]; !ok {
			t.Fatalf("no insert into %s staging", name)
		}
	}
	if got := len(f.inserts["states_staging"]); got != refdata.Len() {
		t.Fatalf("states rows = %d", got)
	}
	if last := f.execs[len(f.execs)-1]; !strings.HasPrefix(last, "DROP TABLE IF EXISTS winners_staging") {
		t.Fatalf("last statement = %q", last)
	}
}

func TestReplace_RowShapes(t *testing.T) {
	t.Parallel()
	f := &fakeCH{}
	if err := New(f).Replace(context.Background(), sampleLoad()); err != nil {
		t.Fatal(err)
	}
	c := f.inserts["contests_staging"][0]
	if len(c) != 15 {
		t.Fatalf("contest columns = %d", len(c))
	}
	if c[1].(*string) != nil {
		t.Fatalf("null lottery should be a nil pointer")
	}
	if d := c[3].(*time.Time); d == nil || d.Day() != 5 {
		t.Fatalf("draw date = %v", d)
	}
	if v := c[7].(*decimal.Decimal); v == nil || v.String() != "10.5" {
		t.Fatalf("collected = %v", v)
	}
	if b := c[14].([]uint16); len(b) != 2 || b[1] != 60 {
		t.Fatalf("drawn = %v", b)
	}
	w := f.inserts["winners_staging"][0]
	if s := w[2].(*string); s == nil || *s != "Teresina" {
		t.Fatalf("municipality = %v", s)
	}
	if w[3].(*string) != nil {
		t.Fatalf("state should be nil")
	}
}

func TestReplace_FailureIsMirrorCodeAndNoSwap(t *testing.T) {
	t.Parallel()
	f := &fakeCH{failOn: "INSERT prize_tiers_staging"}
	err := New(f).Replace(context.Background(), sampleLoad())
	if perr.CodeOf(err) != perr.ErrorCodeMirror {
		t.Fatalf("code = %v (%v)", perr.CodeOf(err), err)
	}
	if perr.ExitCode(err) != 3 {
		t.Fatalf("exit = %d", perr.ExitCode(err))
	}
	for _, q := range f.execs {
		if strings.HasPrefix(q, "EXCHANGE") {
			t.Fatalf("no swap expected after a failed stage: %q", q)
		}
	}
}

func TestReplace_ExecFailure(t *testing.T) {
	t.Parallel()
	f := &fakeCH{failOn: "EXCHANGE"}
	err := New(f).Replace(context.Background(), sampleLoad())
	if perr.CodeOf(err) != perr.ErrorCodeMirror {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	e, _ := perr.As(err)
	if e.Op() != "exec" {
		t.Fatalf("op = %q", e.Op())
	}
}
