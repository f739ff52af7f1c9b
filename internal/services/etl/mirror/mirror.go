// Package mirror rebuilds a committed load in clickhouse
package mirror

import (
	"context"
	"time"

	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/logger"
	"loteria/internal/platform/store"
	"loteria/internal/services/etl/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const stagingSuffix = "_staging"

type table struct {
	name string
	cols string
	rows func(domain.Load) [][]any
}

var tables = []table{
	{
		name: "states",
		cols: `code String, name String, region LowCardinality(String)`,
		rows: stateRows,
	},
	{
		name: "contests",
		cols: `id Int64, lottery Nullable(String), contest_number Int64, draw_date Nullable(Date),
			location Nullable(String), rollover Nullable(Bool), note Nullable(String),
			collected Nullable(Decimal(38, 6)), accumulated_0_5 Nullable(Decimal(38, 6)),
			accumulated_special Nullable(Decimal(38, 6)), accumulated_next Nullable(Decimal(38, 6)),
			estimated_next Nullable(Decimal(38, 6)), next_contest_number Nullable(Int64),
			next_draw_date Nullable(Date), drawn_numbers Array(UInt16)`,
		rows: contestRows,
	},
	{
		name: "prize_tiers",
		cols: `contest_id Int64, ordinal UInt32, description Nullable(String), tier Nullable(Int64),
			winners Nullable(Int64), prize_value Nullable(Decimal(38, 6)), winning_numbers Array(UInt16)`,
		rows: prizeRows,
	},
	{
		name: "winners",
		cols: `contest_id Int64, ordinal UInt32, municipality Nullable(String),
			state_code Nullable(FixedString(2)), winners Nullable(Int64), tier Nullable(Int64)`,
		rows: winnerRows,
	},
}

// CH mirrors loads into clickhouse. Each relation is written to a staging
// table first; live tables are swapped only after every staging insert succeeded
type CH struct {
	db store.Clickhouse
}

var _ domain.Mirror = (*CH)(nil)

// New returns a clickhouse mirror over db
func New(db store.Clickhouse) *CH {
	return &CH{db: db}
}

// Replace rebuilds all four relations from l. Any failure is ErrorCodeMirror
func (m *CH) Replace(ctx context.Context, l domain.Load) error {
	start := time.Now()
	defer m.dropStaging(context.WithoutCancel(ctx))

	for _, t := range tables {
		if err := m.stage(ctx, t, l); err != nil {
			return err
		}
	}
	for _, t := range tables {
		if err := m.exec(ctx, t.name, "EXCHANGE TABLES "+t.name+stagingSuffix+" AND "+t.name); err != nil {
			return err
		}
	}
	logger.C(ctx).Info().
		Int("contests", len(l.Contests)).
		Int("prizes", len(l.Prizes)).
		Int("winners", len(l.Winners)).
		Dur("took", time.Since(start)).
		Msg("mirror replaced")
	return nil
}

func (m *CH) stage(ctx context.Context, t table, l domain.Load) error {
	staging := t.name + stagingSuffix
	ddl := "CREATE TABLE IF NOT EXISTS " + t.name + " (" + t.cols + ") ENGINE = MergeTree ORDER BY tuple()"
	if err := m.exec(ctx, t.name, ddl); err != nil {
		return err
	}
	if err := m.exec(ctx, t.name, "DROP TABLE IF EXISTS "+staging); err != nil {
		return err
	}
	if err := m.exec(ctx, t.name, "CREATE TABLE "+staging+" AS "+t.name); err != nil {
		return err
	}
	if err := m.db.Insert(ctx, staging, t.rows(l)); err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeMirror, "mirror %s", t.name), "insert")
	}
	return nil
}

func (m *CH) exec(ctx context.Context, name, sql string) error {
	if err := m.db.Exec(ctx, sql); err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeMirror, "mirror %s", name), "exec")
	}
	return nil
}

// after a swap the staging tables hold the previous generation
func (m *CH) dropStaging(ctx context.Context) {
	for _, t := range tables {
		if err := m.db.Exec(ctx, "DROP TABLE IF EXISTS "+t.name+stagingSuffix); err != nil {
			logger.C(ctx).Warn().Err(err).Str("table", t.name).Msg("drop staging failed")
		}
	}
}

func stateRows(l domain.Load) [][]any {
	out := make([][]any, 0, len(l.States))
	for _, s := range l.States {
		out = append(out, []any{s.Code, s.Name, s.Region})
	}
	return out
}

func contestRows(l domain.Load) [][]any {
	out := make([][]any, 0, len(l.Contests))
	for _, c := range l.Contests {
		out = append(out, []any{
			c.ID, str(c.Lottery), c.Number, date(c.DrawDate),
			str(c.Location), boolean(c.Rollover), str(c.Note),
			dec(c.Collected), dec(c.Accumulated05),
			dec(c.AccumulatedSpecial), dec(c.AccumulatedNext),
			dec(c.EstimatedNext), i64(c.NextContest),
			date(c.NextDrawDate), balls(c.DrawnNumbers),
		})
	}
	return out
}

func prizeRows(l domain.Load) [][]any {
	out := make([][]any, 0, len(l.Prizes))
	for _, p := range l.Prizes {
		out = append(out, []any{
			p.ContestID, uint32(p.Ordinal), str(p.Description), i64(p.Tier),
			i64(p.Winners), dec(p.Value), balls(p.Numbers),
		})
	}
	return out
}

func winnerRows(l domain.Load) [][]any {
	out := make([][]any, 0, len(l.Winners))
	for _, w := range l.Winners {
		out = append(out, []any{
			w.ContestID, uint32(w.Ordinal), str(w.Municipality),
			str(w.State), i64(w.Winners), i64(w.Tier),
		})
	}
	return out
}

// nullable columns take pointers; nil is NULL

func str(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func i64(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func boolean(b pgtype.Bool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}

func date(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	return &d.Time
}

func dec(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

// balls are bounded to 0..999 before they get here
func balls(ns []int) []uint16 {
	out := make([]uint16, len(ns))
	for i, n := range ns {
		out[i] = uint16(n)
	}
	return out
}
