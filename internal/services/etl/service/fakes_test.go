package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"slices"
	"testing"
	"time"

	"loteria/internal/core/refdata"
	"loteria/internal/modkit/repokit"
	"loteria/internal/platform/store"
	"loteria/internal/services/etl/domain"
	"loteria/internal/services/etl/transform"
)

// decode mirrors the feed reader: json numbers stay json.Number
func decode(t *testing.T, doc string) []any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(doc))
	dec.UseNumber()
	var out []any
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

type fakeReader struct {
	recs   []any
	pos    int
	tail   error // returned instead of io.EOF
	closed bool
}

func (r *fakeReader) Next() (any, error) {
	if r.pos >= len(r.recs) {
		if r.tail != nil {
			return nil, r.tail
		}
		return nil, io.EOF
	}
	r.pos++
	return r.recs[r.pos-1], nil
}
func (r *fakeReader) Close() error        { r.closed = true; return nil }
func (r *fakeReader) Stats() (int, int64) { return r.pos, int64(r.pos) * 10 }

type fakeSource struct {
	rd      *fakeReader
	openErr error
}

func (s *fakeSource) Open(context.Context, string) (domain.ReaderPort, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.rd, nil
}

type tables struct {
	states   []refdata.State
	contests []domain.ContestRow
	prizes   []domain.PrizeRow
	winners  []domain.WinnerRow
}

func (t tables) clone() tables {
	return tables{
		states:   slices.Clone(t.states),
		contests: slices.Clone(t.contests),
		prizes:   slices.Clone(t.prizes),
		winners:  slices.Clone(t.winners),
	}
}

type tag int64

func (t tag) String() string      { return "OK" }
func (t tag) RowsAffected() int64 { return int64(t) }

type lockRow struct{ claimed bool }

func (r lockRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.claimed
	return nil
}

// fakeDB keeps a committed snapshot; a transaction works on a copy that is
// published only when fn returns nil
type fakeDB struct {
	committed tables
	pending   tables

	execs    []string
	lockHeld bool
	txCalls  int

	failOn    string // relation whose insert fails
	failTimes int    // <0 fails forever
	failed    int
	failErr   error
	short     string // relation whose insert under-reports rows
	skew      string // relation whose count is off by one

	chunks map[string][]int
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return tag(0), nil
}
func (f *fakeDB) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) store.Row {
	return lockRow{claimed: !f.lockHeld}
}

func (f *fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txCalls++
	f.pending = f.committed.clone()
	if err := fn(f); err != nil {
		return err
	}
	f.committed = f.pending
	return nil
}

func (f *fakeDB) binder() repokit.Binder[domain.StorageRepo] {
	return repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo {
		return &fakeRepo{db: f}
	})
}

func (f *fakeDB) fail(rel string) error {
	if rel != f.failOn {
		return nil
	}
	if f.failTimes >= 0 && f.failed >= f.failTimes {
		return nil
	}
	f.failed++
	return f.failErr
}

func (f *fakeDB) wrote(rel string, n int) (int, error) {
	if f.chunks == nil {
		f.chunks = map[string][]int{}
	}
	f.chunks[rel] = append(f.chunks[rel], n)
	if rel == f.short {
		return n - 1, nil
	}
	return n, nil
}

type fakeRepo struct{ db *fakeDB }

func (r *fakeRepo) EnsureSchema(context.Context) error { return nil }
func (r *fakeRepo) Truncate(context.Context) error {
	r.db.pending = tables{}
	return nil
}
func (r *fakeRepo) InsertStates(_ context.Context, ss []refdata.State) (int, error) {
	if err := r.db.fail("states"); err != nil {
		return 0, err
	}
	r.db.pending.states = append(r.db.pending.states, ss...)
	return r.db.wrote("states", len(ss))
}
func (r *fakeRepo) InsertContests(_ context.Context, cs []domain.ContestRow) (int, error) {
	if err := r.db.fail("contests"); err != nil {
		return 0, err
	}
	r.db.pending.contests = append(r.db.pending.contests, cs...)
	return r.db.wrote("contests", len(cs))
}
func (r *fakeRepo) InsertPrizes(_ context.Context, ps []domain.PrizeRow) (int, error) {
	if err := r.db.fail("prize_tiers"); err != nil {
		return 0, err
	}
	r.db.pending.prizes = append(r.db.pending.prizes, ps...)
	return r.db.wrote("prize_tiers", len(ps))
}
func (r *fakeRepo) InsertWinners(_ context.Context, ws []domain.WinnerRow) (int, error) {
	if err := r.db.fail("winners"); err != nil {
		return 0, err
	}
	r.db.pending.winners = append(r.db.pending.winners, ws...)
	return r.db.wrote("winners", len(ws))
}

func (r *fakeRepo) Counts(context.Context) (map[string]int64, error) {
	p := r.db.pending
	out := map[string]int64{
		"states":      int64(len(p.states)),
		"contests":    int64(len(p.contests)),
		"prize_tiers": int64(len(p.prizes)),
		"winners":     int64(len(p.winners)),
	}
	if r.db.skew != "" {
		out[r.db.skew]++
	}
	return out, nil
}

type fakeMirror struct {
	got *domain.Load
	err error
}

func (m *fakeMirror) Replace(_ context.Context, l domain.Load) error {
	m.got = &l
	return m.err
}

type harness struct {
	svc    *Service
	db     *fakeDB
	reader *fakeReader
	sleeps []time.Duration
}

// newHarness builds a service over doc. A nil db means preview only
func newHarness(t *testing.T, doc string, db *fakeDB, mirror domain.Mirror, cfg Config) *harness {
	t.Helper()
	h := &harness{db: db, reader: &fakeReader{recs: decode(t, doc)}}
	var (
		tx     repokit.TxRunner
		binder repokit.Binder[domain.StorageRepo]
	)
	if db != nil {
		tx, binder = db, db.binder()
	}
	h.svc = New(tx, binder, &fakeSource{rd: h.reader}, transform.Normalizer{}, transform.Decomposer{}, mirror, cfg)
	h.svc.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	return h
}
