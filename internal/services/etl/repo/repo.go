// Package repo provides postgres access for the draw load
package repo

import (
	"context"
	"encoding/json"

	"loteria/internal/core/refdata"
	"loteria/internal/modkit/repokit"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/store"
	"loteria/internal/services/etl/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// EnsureSchema creates missing tables and indexes
func (r *queries) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := store.Exec(ctx, r.q, "ensure schema", stmt); err != nil {
			return err
		}
	}
	return nil
}

// Truncate empties all four relations in one statement
func (r *queries) Truncate(ctx context.Context) error {
	_, err := store.Exec(ctx, r.q, "truncate", truncateSQL)
	return err
}

// InsertStates writes the reference table
func (r *queries) InsertStates(ctx context.Context, ss []refdata.State) (int, error) {
	if len(ss) == 0 {
		return 0, nil
	}
	codes := make([]string, len(ss))
	names := make([]string, len(ss))
	regions := make([]string, len(ss))
	for i, s := range ss {
		codes[i], names[i], regions[i] = s.Code, s.Name, s.Region
	}
	n, err := store.Exec(ctx, r.q, "insert states", insertStatesSQL, codes, names, regions)
	return int(n), err
}

// InsertContests writes one chunk of contests
func (r *queries) InsertContests(ctx context.Context, cs []domain.ContestRow) (int, error) {
	if len(cs) == 0 {
		return 0, nil
	}
	var (
		ids, numbers                      = make([]int64, len(cs)), make([]int64, len(cs))
		lotteries, locations, notes       = make([]pgtype.Text, len(cs)), make([]pgtype.Text, len(cs)), make([]pgtype.Text, len(cs))
		dates, nextDates                  = make([]pgtype.Date, len(cs)), make([]pgtype.Date, len(cs))
		rollovers                         = make([]pgtype.Bool, len(cs))
		collected, acc05, accSpec, accNxt = make([]pgtype.Text, len(cs)), make([]pgtype.Text, len(cs)), make([]pgtype.Text, len(cs)), make([]pgtype.Text, len(cs))
		estNext, drawn                    = make([]pgtype.Text, len(cs)), make([]string, len(cs))
		nextContest                       = make([]pgtype.Int8, len(cs))
	)
	for i, c := range cs {
		ids[i], numbers[i] = c.ID, c.Number
		lotteries[i], locations[i], notes[i] = c.Lottery, c.Location, c.Note
		dates[i], nextDates[i] = c.DrawDate, c.NextDrawDate
		rollovers[i] = c.Rollover
		collected[i] = decimalText(c.Collected)
		acc05[i] = decimalText(c.Accumulated05)
		accSpec[i] = decimalText(c.AccumulatedSpecial)
		accNxt[i] = decimalText(c.AccumulatedNext)
		estNext[i] = decimalText(c.EstimatedNext)
		nextContest[i] = c.NextContest
		drawn[i] = numbersJSON(c.DrawnNumbers)
	}
	n, err := store.Exec(ctx, r.q, "insert contests", insertContestsSQL,
		ids, lotteries, numbers, dates, locations, rollovers, notes,
		collected, acc05, accSpec, accNxt, estNext,
		nextContest, nextDates, drawn,
	)
	return int(n), err
}

// InsertPrizes writes one chunk of prize tiers
func (r *queries) InsertPrizes(ctx context.Context, ps []domain.PrizeRow) (int, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	contestIDs := make([]int64, len(ps))
	ordinals := make([]int32, len(ps))
	descs := make([]pgtype.Text, len(ps))
	tiers := make([]pgtype.Int8, len(ps))
	winners := make([]pgtype.Int8, len(ps))
	values := make([]pgtype.Text, len(ps))
	nums := make([]string, len(ps))
	for i, p := range ps {
		contestIDs[i], ordinals[i] = p.ContestID, int32(p.Ordinal)
		descs[i], tiers[i], winners[i] = p.Description, p.Tier, p.Winners
		values[i] = decimalText(p.Value)
		nums[i] = numbersJSON(p.Numbers)
	}
	n, err := store.Exec(ctx, r.q, "insert prize tiers", insertPrizesSQL,
		contestIDs, ordinals, descs, tiers, winners, values, nums)
	return int(n), err
}

// InsertWinners writes one chunk of winners-by-municipality
func (r *queries) InsertWinners(ctx context.Context, ws []domain.WinnerRow) (int, error) {
	if len(ws) == 0 {
		return 0, nil
	}
	contestIDs := make([]int64, len(ws))
	ordinals := make([]int32, len(ws))
	cities := make([]pgtype.Text, len(ws))
	states := make([]pgtype.Text, len(ws))
	winners := make([]pgtype.Int8, len(ws))
	tiers := make([]pgtype.Int8, len(ws))
	for i, w := range ws {
		contestIDs[i], ordinals[i] = w.ContestID, int32(w.Ordinal)
		cities[i], states[i] = w.Municipality, w.State
		winners[i], tiers[i] = w.Winners, w.Tier
	}
	n, err := store.Exec(ctx, r.q, "insert winners", insertWinnersSQL,
		contestIDs, ordinals, cities, states, winners, tiers)
	return int(n), err
}

type relCount struct {
	rel string
	n   int64
}

// Counts returns the row count of every relation
func (r *queries) Counts(ctx context.Context) (map[string]int64, error) {
	rows, err := store.Many(ctx, r.q, func(row store.Row) (relCount, error) {
		var c relCount
		err := row.Scan(&c.rel, &c.n)
		return c, err
	}, countsSQL)
	if err != nil {
		return nil, perr.WithOp(perr.FromPostgres(err, "count rows"), "count rows")
	}
	out := make(map[string]int64, len(rows))
	for _, c := range rows {
		out[c.rel] = c.n
	}
	return out, nil
}

// decimals travel as text and are cast in SQL, keeping every digit
func decimalText(d decimal.NullDecimal) pgtype.Text {
	if !d.Valid {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.Decimal.String(), Valid: true}
}

func numbersJSON(ns []int) string {
	if len(ns) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
