package transform

import (
	"slices"

	"loteria/internal/services/etl/domain"
)

// Decomposer splits normalized records into rows
type Decomposer struct{}

var _ domain.Decomposer = Decomposer{}

// Decompose implements domain.Decomposer
func (Decomposer) Decompose(r domain.Record) domain.Decomposed { return Decompose(r) }

// Decompose turns one Record into a contest row plus its prize and winner rows.
// Ordinals are 1-based source positions. A prize keeps only its own numbers;
// number lists are never nil so they store as []
func Decompose(r domain.Record) domain.Decomposed {
	out := domain.Decomposed{
		Contest: domain.ContestRow{
			Lottery:            r.Lottery,
			Number:             r.Contest,
			DrawDate:           r.DrawDate,
			Location:           r.Location,
			Rollover:           r.Rollover,
			Note:               r.Note,
			Collected:          r.Collected,
			Accumulated05:      r.Accumulated05,
			AccumulatedSpecial: r.AccumulatedSpecial,
			AccumulatedNext:    r.AccumulatedNext,
			EstimatedNext:      r.EstimatedNext,
			NextContest:        r.NextContest,
			NextDrawDate:       r.NextDrawDate,
			DrawnNumbers:       orEmpty(r.Drawn),
		},
	}

	if len(r.Prizes) > 0 {
		out.Prizes = make([]domain.PrizeRow, 0, len(r.Prizes))
	}
	for i, p := range r.Prizes {
		out.Prizes = append(out.Prizes, domain.PrizeRow{
			Ordinal:     i + 1,
			Description: p.Description,
			Tier:        p.Tier,
			Winners:     p.Winners,
			Value:       p.Value,
			Numbers:     orEmpty(p.Numbers),
		})
	}

	if len(r.Winners) > 0 {
		out.Winners = make([]domain.WinnerRow, 0, len(r.Winners))
	}
	for i, w := range r.Winners {
		out.Winners = append(out.Winners, domain.WinnerRow{
			Ordinal:      i + 1,
			Municipality: w.Municipality,
			State:        w.State,
			Winners:      w.Winners,
			Tier:         w.Tier,
		})
	}
	return out
}

func orEmpty(ns []int) []int {
	if ns == nil {
		return []int{}
	}
	return slices.Clone(ns)
}
