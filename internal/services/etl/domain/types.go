// Package domain holds the record, row and summary shapes of the draw ETL
package domain

import (
	"fmt"
	"time"

	"loteria/internal/core/refdata"
	perr "loteria/internal/platform/errors"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Record is one normalized draw record. Every field is present; absent or
// unusable source values are null. JSON names are the accepted source keys, so
// a marshalled Record normalizes back to itself
type Record struct {
	Lottery            pgtype.Text         `json:"loteria"`
	Contest            int64               `json:"concurso"`
	DrawDate           pgtype.Date         `json:"data"`
	Location           pgtype.Text         `json:"local"`
	Rollover           pgtype.Bool         `json:"acumulado"`
	Note               pgtype.Text         `json:"observacao"`
	Collected          decimal.NullDecimal `json:"valorArrecadado"`
	Accumulated05      decimal.NullDecimal `json:"valorAcumuladoConcurso_0_5"`
	AccumulatedSpecial decimal.NullDecimal `json:"valorAcumuladoConcursoEspecial"`
	AccumulatedNext    decimal.NullDecimal `json:"valorAcumuladoProximoConcurso"`
	EstimatedNext      decimal.NullDecimal `json:"valorEstimadoProximoConcurso"`
	NextContest        pgtype.Int8         `json:"numeroConcursoProximo"`
	NextDrawDate       pgtype.Date         `json:"dataProximoConcurso"`
	Drawn              []int               `json:"dezenasOrdemSorteio"`
	Prizes             []PrizeEntry        `json:"premiacoes"`
	Winners            []WinnerEntry       `json:"localGanhadores"`
}

// PrizeEntry is one normalized prize tier of a record. Numbers is nil when the
// source entry had none; the contest draw fills it in at decomposition
type PrizeEntry struct {
	Tier        pgtype.Int8         `json:"faixa"`
	Description pgtype.Text         `json:"descricao"`
	Winners     pgtype.Int8         `json:"ganhadores"`
	Value       decimal.NullDecimal `json:"valorPremio"`
	Numbers     []int               `json:"dezenas"`
}

// WinnerEntry is one normalized winners-by-municipality entry of a record
type WinnerEntry struct {
	Municipality pgtype.Text `json:"municipio"`
	State        pgtype.Text `json:"uf"`
	Winners      pgtype.Int8 `json:"ganhadores"`
	Tier         pgtype.Int8 `json:"faixa"`
}

// ContestKey identifies a contest for duplicate detection
type ContestKey struct {
	Lottery string
	Number  int64
}

// Key returns the duplicate key of r; a null lottery keys as ""
func (r Record) Key() ContestKey {
	return ContestKey{Lottery: r.Lottery.String, Number: r.Contest}
}

func (k ContestKey) String() string {
	if k.Lottery == "" {
		return fmt.Sprintf("#%d", k.Number)
	}
	return fmt.Sprintf("%s #%d", k.Lottery, k.Number)
}

// ContestRow is a row of the contests relation
type ContestRow struct {
	ID                 int64               `json:"id" validate:"gt=0"`
	Lottery            pgtype.Text         `json:"lottery"`
	Number             int64               `json:"contest_number" validate:"gt=0"`
	DrawDate           pgtype.Date         `json:"draw_date"`
	Location           pgtype.Text         `json:"location"`
	Rollover           pgtype.Bool         `json:"rollover"`
	Note               pgtype.Text         `json:"note"`
	Collected          decimal.NullDecimal `json:"collected" validate:"omitempty,gte=0"`
	Accumulated05      decimal.NullDecimal `json:"accumulated_0_5" validate:"omitempty,gte=0"`
	AccumulatedSpecial decimal.NullDecimal `json:"accumulated_special" validate:"omitempty,gte=0"`
	AccumulatedNext    decimal.NullDecimal `json:"accumulated_next" validate:"omitempty,gte=0"`
	EstimatedNext      decimal.NullDecimal `json:"estimated_next" validate:"omitempty,gte=0"`
	NextContest        pgtype.Int8         `json:"next_contest" validate:"omitempty,gte=0"`
	NextDrawDate       pgtype.Date         `json:"next_draw_date"`
	DrawnNumbers       []int               `json:"drawn_numbers" validate:"dive,gte=0,lte=999"`
}

// PrizeRow is a row of the prize_tiers relation
type PrizeRow struct {
	ContestID   int64               `json:"contest_id" validate:"gt=0"`
	Ordinal     int                 `json:"ordinal" validate:"gt=0"`
	Description pgtype.Text         `json:"description"`
	Tier        pgtype.Int8         `json:"tier"`
	Winners     pgtype.Int8         `json:"winners" validate:"omitempty,gte=0"`
	Value       decimal.NullDecimal `json:"value" validate:"omitempty,gte=0"`
	Numbers     []int               `json:"numbers" validate:"dive,gte=0,lte=999"`
}

// WinnerRow is a row of the winners relation
type WinnerRow struct {
	ContestID    int64       `json:"contest_id" validate:"gt=0"`
	Ordinal      int         `json:"ordinal" validate:"gt=0"`
	Municipality pgtype.Text `json:"municipality"`
	State        pgtype.Text `json:"state" validate:"omitempty,uf"`
	Winners      pgtype.Int8 `json:"winners" validate:"omitempty,gte=0"`
	Tier         pgtype.Int8 `json:"tier"`
}

// Decomposed is one record split into rows. ContestID is zero until the
// aggregator assigns it
type Decomposed struct {
	Contest ContestRow
	Prizes  []PrizeRow
	Winners []WinnerRow
}

// SetContestID links the contest and its children to id
func (d *Decomposed) SetContestID(id int64) {
	d.Contest.ID = id
	for i := range d.Prizes {
		d.Prizes[i].ContestID = id
	}
	for i := range d.Winners {
		d.Winners[i].ContestID = id
	}
}

// Load is the full output of a run, ready to persist
type Load struct {
	States   []refdata.State
	Contests []ContestRow
	Prizes   []PrizeRow
	Winners  []WinnerRow
}

// SkipReason says why a record produced no rows
type SkipReason string

// Skip reasons
const (
	SkipMissingContest SkipReason = "missing_contest"
	SkipInvalidContest SkipReason = "invalid_contest"
	SkipNotObject      SkipReason = "not_object"
)

// Skip is a record-level rejection. Index is the record's position in the input
type Skip struct {
	Reason SkipReason `json:"reason"`
	Index  int        `json:"index"`
	Detail string     `json:"detail,omitempty"`
}

func (s *Skip) Error() string {
	if s.Detail == "" {
		return fmt.Sprintf("record %d skipped: %s", s.Index, s.Reason)
	}
	return fmt.Sprintf("record %d skipped: %s (%s)", s.Index, s.Reason, s.Detail)
}

// Issues counts field-level degradations
type Issues struct {
	MissingDate     int `json:"missing_date"`
	MissingLocation int `json:"missing_location"`
	MissingNumbers  int `json:"missing_numbers"`
	InvalidState    int `json:"invalid_state"`
	NegativeClamped int `json:"negative_clamped"`
}

// Add accumulates o into i
func (i *Issues) Add(o Issues) {
	i.MissingDate += o.MissingDate
	i.MissingLocation += o.MissingLocation
	i.MissingNumbers += o.MissingNumbers
	i.InvalidState += o.InvalidState
	i.NegativeClamped += o.NegativeClamped
}

// Mode selects whether a run persists
type Mode string

// Modes
const (
	ModePreview Mode = "preview"
	ModeCommit  Mode = "commit"
)

// MaxSkipSamples caps the skips retained in a Summary
const MaxSkipSamples = 20

// Summary is the run report
type Summary struct {
	RunID       string             `json:"run_id"`
	Mode        Mode               `json:"mode"`
	Input       string             `json:"input"`
	Records     int                `json:"records"`
	Bytes       int64              `json:"bytes"`
	Contests    int                `json:"contests"`
	Prizes      int                `json:"prizes"`
	Winners     int                `json:"winners"`
	States      int                `json:"states"`
	Skipped     int                `json:"skipped"`
	SkipReasons map[SkipReason]int `json:"skip_reasons"`
	SkipSamples []Skip             `json:"skip_samples,omitempty"`
	Duplicates  int                `json:"duplicates"`
	StateCodes  []string           `json:"state_codes"`
	Issues      Issues             `json:"issues"`
	Committed   bool               `json:"committed"`
	Mirrored    bool               `json:"mirrored"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Error       *perr.Wire         `json:"error,omitempty"`
}

// NewSummary returns a Summary with its maps ready
func NewSummary(runID string, mode Mode, input string) Summary {
	return Summary{
		RunID:       runID,
		Mode:        mode,
		Input:       input,
		SkipReasons: map[SkipReason]int{},
		StateCodes:  []string{},
	}
}

// AddSkip counts s and keeps it as a sample while there is room
func (s *Summary) AddSkip(sk Skip) {
	s.Skipped++
	s.SkipReasons[sk.Reason]++
	if len(s.SkipSamples) < MaxSkipSamples {
		s.SkipSamples = append(s.SkipSamples, sk)
	}
}

// Discard drops everything counted so far, keeping the run identity
func (s *Summary) Discard() {
	*s = NewSummary(s.RunID, s.Mode, s.Input)
}

// Finish stamps elapsed time and the terminal error, if any
func (s *Summary) Finish(started time.Time, err error) {
	s.ElapsedMS = time.Since(started).Milliseconds()
	if err != nil {
		w := perr.WireFrom(err)
		s.Error = &w
	}
}

// Outcome is what a run hands back: the report plus the rows behind it
type Outcome struct {
	Summary Summary
	Load    Load
}
