// Package report renders run summaries for people and scripts
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"loteria/internal/services/etl/domain"
	"loteria/internal/services/etl/transform"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Null is how a null cell is printed
const Null = "NULL"

// JSON writes the summary as one indented document
func JSON(w io.Writer, s domain.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Text writes the human summary followed by up to samples rows per relation
func Text(w io.Writer, out domain.Outcome, samples int) error {
	p := &printer{w: w}
	s := out.Summary

	p.kv("run", s.RunID)
	p.kv("mode", string(s.Mode))
	p.kv("input", s.Input)
	p.kv("records", fmt.Sprintf("%d (%d bytes)", s.Records, s.Bytes))
	p.kv("elapsed", fmt.Sprintf("%dms", s.ElapsedMS))
	p.blank()

	p.table([]string{"relation", "rows"}, [][]string{
		{"states", strconv.Itoa(s.States)},
		{"contests", strconv.Itoa(s.Contests)},
		{"prize_tiers", strconv.Itoa(s.Prizes)},
		{"winners", strconv.Itoa(s.Winners)},
	})
	p.blank()

	p.kv("skipped", strconv.Itoa(s.Skipped))
	for _, r := range []domain.SkipReason{domain.SkipMissingContest, domain.SkipInvalidContest, domain.SkipNotObject} {
		if n := s.SkipReasons[r]; n > 0 {
			p.kv("  "+string(r), strconv.Itoa(n))
		}
	}
	p.kv("duplicates", strconv.Itoa(s.Duplicates))
	codes := strings.Join(s.StateCodes, ", ")
	if codes == "" {
		codes = "-"
	}
	p.kv("state codes", fmt.Sprintf("%d (%s)", len(s.StateCodes), codes))
	p.blank()

	p.line("null report")
	p.kv("  missing date", strconv.Itoa(s.Issues.MissingDate))
	p.kv("  missing location", strconv.Itoa(s.Issues.MissingLocation))
	p.kv("  missing numbers", strconv.Itoa(s.Issues.MissingNumbers))
	p.kv("  invalid state", strconv.Itoa(s.Issues.InvalidState))
	p.kv("  negative clamped", strconv.Itoa(s.Issues.NegativeClamped))
	p.blank()

	if s.Mode == domain.ModeCommit {
		p.kv("committed", strconv.FormatBool(s.Committed))
		p.kv("mirrored", strconv.FormatBool(s.Mirrored))
	}
	if s.Error != nil {
		p.kv("error", s.Error.Code+": "+s.Error.Message)
	}
	if len(s.SkipSamples) > 0 {
		p.blank()
		p.line("skip samples")
		rows := make([][]string, 0, len(s.SkipSamples))
		for _, sk := range s.SkipSamples {
			rows = append(rows, []string{strconv.Itoa(sk.Index), string(sk.Reason), sk.Detail})
		}
		p.table([]string{"index", "reason", "detail"}, rows)
	}

	if samples > 0 {
		p.samples(out.Load, samples)
	}
	return p.err
}

// printer keeps the first write error so callers check once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) blank() { p.line("") }

func (p *printer) kv(k, v string) { p.line(fmt.Sprintf("%-20s %s", k, v)) }

func (p *printer) table(header []string, rows [][]string) {
	if p.err != nil {
		return
	}
	p.err = table(p.w, header, rows)
}

func (p *printer) samples(l domain.Load, n int) {
	section := func(name string, total int) bool {
		p.blank()
		if total == 0 {
			p.line(name + ": no rows")
			return false
		}
		p.line(fmt.Sprintf("%s (first %d of %d)", name, min(n, total), total))
		return true
	}

	if section("states", len(l.States)) {
		rows := [][]string{}
		for _, s := range l.States[:min(n, len(l.States))] {
			rows = append(rows, []string{s.Code, s.Name, s.Region})
		}
		p.table([]string{"code", "name", "region"}, rows)
	}
	if section("contests", len(l.Contests)) {
		rows := [][]string{}
		for _, c := range l.Contests[:min(n, len(l.Contests))] {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), text(c.Lottery), strconv.FormatInt(c.Number, 10),
				date(c.DrawDate), text(c.Location), boolean(c.Rollover), money(c.Collected),
				int8s(c.NextContest), numbers(c.DrawnNumbers),
			})
		}
		p.table([]string{"id", "lottery", "contest_number", "draw_date", "location", "rollover", "collected", "next_contest", "drawn_numbers"}, rows)
	}
	if section("prize_tiers", len(l.Prizes)) {
		rows := [][]string{}
		for _, pr := range l.Prizes[:min(n, len(l.Prizes))] {
			rows = append(rows, []string{
				strconv.FormatInt(pr.ContestID, 10), strconv.Itoa(pr.Ordinal), int8s(pr.Tier),
				text(pr.Description), int8s(pr.Winners), money(pr.Value), numbers(pr.Numbers),
			})
		}
		p.table([]string{"contest_id", "ordinal", "tier", "description", "winners", "prize_value", "winning_numbers"}, rows)
	}
	if section("winners", len(l.Winners)) {
		rows := [][]string{}
		for _, w := range l.Winners[:min(n, len(l.Winners))] {
			rows = append(rows, []string{
				strconv.FormatInt(w.ContestID, 10), strconv.Itoa(w.Ordinal), text(w.Municipality),
				text(w.State), int8s(w.Winners), int8s(w.Tier),
			})
		}
		p.table([]string{"contest_id", "ordinal", "municipality", "state_code", "winners", "tier"}, rows)
	}
}

func text(t pgtype.Text) string {
	if !t.Valid {
		return Null
	}
	return t.String
}

func int8s(v pgtype.Int8) string {
	if !v.Valid {
		return Null
	}
	return strconv.FormatInt(v.Int64, 10)
}

func boolean(b pgtype.Bool) string {
	if !b.Valid {
		return Null
	}
	return strconv.FormatBool(b.Bool)
}

func date(d pgtype.Date) string {
	if !d.Valid {
		return Null
	}
	return transform.FormatDate(d)
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return Null
	}
	return d.Decimal.String()
}

func numbers(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
