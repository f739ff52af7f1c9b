// Package service runs the draw ETL: read, normalize, decompose, gate, persist
package service

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"slices"
	"time"

	"loteria/internal/core/refdata"
	"loteria/internal/modkit/repokit"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/logger"
	"loteria/internal/services/etl/domain"
	"loteria/internal/services/etl/guardrails"

	"github.com/google/uuid"
)

// Config holds the tuning knobs of a run
type Config struct {
	// InsertChunk caps rows per insert statement; <=0 -> 1000
	InsertChunk int

	// Commit-level retry
	MaxRetries int           // attempts per commit; <=0 -> 1
	RetryBase  time.Duration // base backoff; <=0 -> 500ms

	Timeouts guardrails.Timeouts

	// Mirror enables the clickhouse rebuild after a commit
	Mirror bool

	// LockKey overrides guardrails.LoadLockKey; 0 keeps the default
	LockKey int64
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner // nil means preview only
	Binder repokit.Binder[domain.StorageRepo]
	Source domain.Source
	Norm   domain.Normalizer
	Split  domain.Decomposer
	Mirror domain.Mirror // optional
	Cfg    Config

	sleep func(context.Context, time.Duration) error
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the service. db and mirror may be nil
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	src domain.Source,
	n domain.Normalizer,
	d domain.Decomposer,
	mirror domain.Mirror,
	cfg Config,
) *Service {
	if src == nil || n == nil || d == nil {
		panic("etl.Service requires a source, a normalizer and a decomposer")
	}
	if db != nil && binder == nil {
		panic("etl.Service requires a repo binder when a database is set")
	}
	return &Service{
		DB: db, Binder: binder,
		Source: src, Norm: n, Split: d,
		Mirror: mirror,
		Cfg:    cfg,
		sleep:  sleepCtx,
	}
}

// Run implements domain.RunnerPort. The Outcome is returned even on error so
// callers can report how far the run got. A run id already on ctx is reused
func (s *Service) Run(ctx context.Context, req domain.Request) (domain.Outcome, error) {
	started := time.Now()
	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithRun(ctx, runID, req.Input)
	log := logger.C(ctx)

	sum := domain.NewSummary(runID, req.Mode, req.Input)
	load, err := s.run(ctx, req, &sum)
	sum.Finish(started, err)

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("mode", string(req.Mode)).
		Int("records", sum.Records).
		Int("contests", sum.Contests).
		Int("prizes", sum.Prizes).
		Int("winners", sum.Winners).
		Int("skipped", sum.Skipped).
		Int("duplicates", sum.Duplicates).
		Bool("committed", sum.Committed).
		Int64("elapsed_ms", sum.ElapsedMS).
		Msg("etl: run finished")

	return domain.Outcome{Summary: sum, Load: load}, err
}

func (s *Service) run(ctx context.Context, req domain.Request, sum *domain.Summary) (domain.Load, error) {
	switch req.Mode {
	case domain.ModePreview:
	case domain.ModeCommit:
		if s.DB == nil {
			return domain.Load{}, perr.Usagef("commit mode needs a database")
		}
	default:
		return domain.Load{}, perr.Usagef("unknown mode %q", req.Mode)
	}

	rd, err := s.Source.Open(ctx, req.Input)
	if err != nil {
		return domain.Load{}, err
	}
	load, err := s.aggregate(ctx, rd, sum)
	if cerr := perr.WrapIf(rd.Close(), perr.ErrorCodeInvalidArgument, "close input"); err == nil {
		err = cerr
	}
	if err != nil {
		// input failures abort before any row is produced
		sum.Discard()
		return domain.Load{}, err
	}

	if err := check(load); err != nil {
		return load, err
	}
	if req.Mode == domain.ModePreview {
		return load, nil
	}

	if err := s.commitWithRetry(ctx, load); err != nil {
		return load, err
	}
	sum.Committed = true

	if s.Cfg.Mirror && s.Mirror != nil {
		mctx, cancel := guardrails.ForMirror(ctx, s.Cfg.Timeouts)
		defer cancel()
		if err := s.Mirror.Replace(mctx, load); err != nil {
			if !perr.IsCode(err, perr.ErrorCodeMirror) {
				err = perr.Wrap(err, perr.ErrorCodeMirror, "mirror")
			}
			return load, err
		}
		sum.Mirrored = true
	}
	return load, nil
}

// aggregate walks the whole input once. Only reader errors and cancellation abort;
// bad records are skipped and duplicates are dropped keep-first
func (s *Service) aggregate(ctx context.Context, rd domain.ReaderPort, sum *domain.Summary) (domain.Load, error) {
	log := logger.C(ctx)
	load := domain.Load{States: refdata.All()}
	seen := map[domain.ContestKey]int64{}
	codes := map[string]struct{}{}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return load, err
		}
		v, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return load, err
		}

		raw, ok := v.(map[string]any)
		if !ok {
			sum.AddSkip(domain.Skip{Reason: domain.SkipNotObject, Index: i, Detail: jsonKind(v)})
			continue
		}
		rec, iss, err := s.Norm.Normalize(raw)
		if err != nil {
			var sk *domain.Skip
			if !errors.As(err, &sk) {
				return load, err
			}
			sk.Index = i
			sum.AddSkip(*sk)
			log.Debug().Int("index", i).Str("reason", string(sk.Reason)).Msg("record skipped")
			continue
		}

		key := rec.Key()
		if first, dup := seen[key]; dup {
			sum.Duplicates++
			log.Debug().Int("index", i).Stringer("contest", key).Int64("kept_id", first).Msg("duplicate contest dropped")
			continue
		}
		id := int64(len(load.Contests) + 1)
		seen[key] = id
		sum.Issues.Add(iss)

		d := s.Split.Decompose(rec)
		d.SetContestID(id)
		load.Contests = append(load.Contests, d.Contest)
		load.Prizes = append(load.Prizes, d.Prizes...)
		load.Winners = append(load.Winners, d.Winners...)
		for _, w := range d.Winners {
			if w.State.Valid {
				codes[w.State.String] = struct{}{}
			}
		}
	}

	sum.Records, sum.Bytes = rd.Stats()
	sum.Contests = len(load.Contests)
	sum.Prizes = len(load.Prizes)
	sum.Winners = len(load.Winners)
	sum.States = len(load.States)
	for c := range codes {
		sum.StateCodes = append(sum.StateCodes, c)
	}
	slices.Sort(sum.StateCodes)
	return load, nil
}

func (s *Service) commitWithRetry(ctx context.Context, l domain.Load) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for i := range attempts {
		err := s.commit(ctx, l)
		if err == nil {
			return nil
		}
		last = err

		if !retryable(err) {
			return last
		}
		if i == attempts-1 {
			break
		}

		// exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d
		if half := int64(d / 2); half > 0 {
			j = d/2 + time.Duration(rand.Int63n(half))
		}
		logger.C(ctx).Warn().Err(err).Int("attempt", i+1).Dur("backoff", j).Msg("etl: commit failed, retrying")
		if se := s.sleep(ctx, j); se != nil {
			return se
		}
	}
	return last
}

// commit replaces the four relations inside one transaction
func (s *Service) commit(ctx context.Context, l domain.Load) error {
	lctx, cancel := guardrails.ForLoad(ctx, s.Cfg.Timeouts)
	defer cancel()

	key := s.Cfg.LockKey
	if key == 0 {
		key = guardrails.LoadLockKey
	}
	tx := repokit.WithBeginHooks(s.DB,
		guardrails.AdvisoryLock(key),
		repokit.StatementTimeout(s.Cfg.Timeouts.Load),
	)
	chunk := s.Cfg.InsertChunk
	if chunk <= 0 {
		chunk = 1000
	}

	t0 := time.Now()
	err := repokit.WithTx(lctx, tx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		if err := r.EnsureSchema(lctx); err != nil {
			return err
		}
		if err := r.Truncate(lctx); err != nil {
			return err
		}
		if err := insertChunks(lctx, "states", l.States, len(l.States), r.InsertStates); err != nil {
			return err
		}
		if err := insertChunks(lctx, "contests", l.Contests, chunk, r.InsertContests); err != nil {
			return err
		}
		if err := insertChunks(lctx, "prize_tiers", l.Prizes, chunk, r.InsertPrizes); err != nil {
			return err
		}
		if err := insertChunks(lctx, "winners", l.Winners, chunk, r.InsertWinners); err != nil {
			return err
		}
		return verify(lctx, r, l)
	})
	if err != nil {
		return err
	}
	logger.C(ctx).Info().
		Int("contests", len(l.Contests)).
		Int("prizes", len(l.Prizes)).
		Int("winners", len(l.Winners)).
		Dur("took", time.Since(t0)).
		Msg("etl: load committed")
	return nil
}

// insertChunks writes rows size at a time and verifies every chunk landed whole
func insertChunks[T any](ctx context.Context, rel string, rows []T, size int, ins func(context.Context, []T) (int, error)) error {
	size = max(size, 1)
	for i := 0; i < len(rows); i += size {
		end := min(i+size, len(rows))
		n, err := ins(ctx, rows[i:end])
		if err != nil {
			return err
		}
		if n != end-i {
			return perr.WithOp(perr.DBf("%s: wrote %d of %d rows", rel, n, end-i), "insert "+rel)
		}
	}
	return nil
}

// verify compares table counts with the load before the transaction commits
func verify(ctx context.Context, r domain.StorageRepo, l domain.Load) error {
	got, err := r.Counts(ctx)
	if err != nil {
		return err
	}
	want := []struct {
		rel string
		n   int
	}{
		{"states", len(l.States)},
		{"contests", len(l.Contests)},
		{"prize_tiers", len(l.Prizes)},
		{"winners", len(l.Winners)},
	}
	for _, w := range want {
		if got[w.rel] != int64(w.n) {
			return perr.WithOp(perr.DBf("%s holds %d rows after load, want %d", w.rel, got[w.rel], w.n), "verify")
		}
	}
	return nil
}

// a held lock is transient: the other load either commits or rolls back
func retryable(err error) bool {
	if errors.Is(err, guardrails.ErrLoadHeld) {
		return true
	}
	return perr.Retryable(err) || perr.IsCode(err, perr.ErrorCodeUnavailable)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
