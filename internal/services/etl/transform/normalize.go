package transform

import (
	"fmt"

	"loteria/internal/services/etl/domain"

	"github.com/shopspring/decimal"
)

// source keys per field; the first present, non-null key wins
var (
	ContestKeys     = []string{"concurso", "numero", "numeroConcurso"}
	lotteryKeys     = []string{"loteria", "tipoJogo"}
	dateKeys        = []string{"data", "dataApuracao"}
	locationKeys    = []string{"local", "localSorteio"}
	noteKeys        = []string{"observacao"}
	rolloverKeys    = []string{"acumulado"}
	collectedKeys   = []string{"valorArrecadado"}
	acc05Keys       = []string{"valorAcumuladoConcurso_0_5"}
	accSpecialKeys  = []string{"valorAcumuladoConcursoEspecial"}
	accNextKeys     = []string{"valorAcumuladoProximoConcurso"}
	estNextKeys     = []string{"valorEstimadoProximoConcurso"}
	nextContestKeys = []string{"numeroConcursoProximo"}
	nextDateKeys    = []string{"dataProximoConcurso"}
	drawnKeys       = []string{"dezenasOrdemSorteio", "dezenas", "listaDezenas"}
	prizeListKeys   = []string{"premiacoes", "premios", "listaRateioPremio"}
	winnerListKeys  = []string{"localGanhadores", "ganhadores", "listaMunicipioUFGanhadores"}

	prizeTierKeys    = []string{"faixa"}
	prizeDescKeys    = []string{"descricao", "descricaoFaixa"}
	prizeWinnersKeys = []string{"ganhadores", "numeroDeGanhadores"}
	prizeValueKeys   = []string{"valorPremio", "valor"}
	prizeNumberKeys  = []string{"dezenas", "numeros"}

	winnerCityKeys    = []string{"municipio"}
	winnerStateKeys   = []string{"uf"}
	winnerWinnersKeys = []string{"ganhadores", "numeroDeGanhadores"}
	winnerTierKeys    = []string{"faixa", "posicao"}
)

// Normalizer cleans raw records. DefaultLottery fills a missing lottery name
type Normalizer struct {
	DefaultLottery string
}

var _ domain.Normalizer = Normalizer{}

// Normalize produces a Record from one raw object. The only error is a
// *domain.Skip for a missing or unusable contest number
func (n Normalizer) Normalize(raw map[string]any) (domain.Record, domain.Issues, error) {
	var iss domain.Issues

	cv := first(raw, ContestKeys...)
	if cv == nil {
		return domain.Record{}, iss, &domain.Skip{Reason: domain.SkipMissingContest}
	}
	contest, ok := contestNumber(cv)
	if !ok {
		return domain.Record{}, iss, &domain.Skip{Reason: domain.SkipInvalidContest, Detail: fmt.Sprintf("concurso=%v", cv)}
	}

	money := func(keys ...string) decimal.NullDecimal {
		d, neg := Money(first(raw, keys...))
		if neg {
			iss.NegativeClamped++
		}
		return d
	}

	rec := domain.Record{
		Contest:            contest,
		Lottery:            Text(first(raw, lotteryKeys...)),
		DrawDate:           Date(first(raw, dateKeys...)),
		Location:           Text(first(raw, locationKeys...)),
		Rollover:           Bool(first(raw, rolloverKeys...)),
		Note:               Note(first(raw, noteKeys...)),
		Collected:          money(collectedKeys...),
		Accumulated05:      money(acc05Keys...),
		AccumulatedSpecial: money(accSpecialKeys...),
		AccumulatedNext:    money(accNextKeys...),
		EstimatedNext:      money(estNextKeys...),
		NextDrawDate:       Date(first(raw, nextDateKeys...)),
	}
	if !rec.Lottery.Valid && n.DefaultLottery != "" {
		rec.Lottery = Text(n.DefaultLottery)
	}

	next, neg := Count(first(raw, nextContestKeys...))
	if neg {
		iss.NegativeClamped++
	}
	rec.NextContest = next

	for _, k := range drawnKeys {
		if nums := Numbers(raw[k]); nums != nil {
			rec.Drawn = nums
			break
		}
	}

	for _, e := range firstList(raw, prizeListKeys) {
		if e == nil {
			continue
		}
		p, clamped := prizeEntry(e)
		iss.NegativeClamped += clamped
		rec.Prizes = append(rec.Prizes, p)
	}
	for _, e := range firstList(raw, winnerListKeys) {
		if e == nil {
			continue
		}
		w, clamped := winnerEntry(e)
		iss.NegativeClamped += clamped
		if !w.State.Valid {
			iss.InvalidState++
		}
		rec.Winners = append(rec.Winners, w)
	}

	if !rec.DrawDate.Valid {
		iss.MissingDate++
	}
	if !rec.Location.Valid {
		iss.MissingLocation++
	}
	if rec.Drawn == nil {
		iss.MissingNumbers++
	}
	return rec, iss, nil
}

// non-object entries become all-null entries
func prizeEntry(e any) (domain.PrizeEntry, int) {
	m, ok := e.(map[string]any)
	if !ok {
		return domain.PrizeEntry{}, 0
	}
	clamped := 0
	tier, neg := Count(first(m, prizeTierKeys...))
	clamped += b2i(neg)
	winners, neg := Count(first(m, prizeWinnersKeys...))
	clamped += b2i(neg)
	value, neg := Money(first(m, prizeValueKeys...))
	clamped += b2i(neg)

	p := domain.PrizeEntry{
		Tier:        tier,
		Description: Text(first(m, prizeDescKeys...)),
		Winners:     winners,
		Value:       value,
	}
	for _, k := range prizeNumberKeys {
		if nums := Numbers(m[k]); nums != nil {
			p.Numbers = nums
			break
		}
	}
	return p, clamped
}

func winnerEntry(e any) (domain.WinnerEntry, int) {
	m, ok := e.(map[string]any)
	if !ok {
		return domain.WinnerEntry{}, 0
	}
	clamped := 0
	winners, neg := Count(first(m, winnerWinnersKeys...))
	clamped += b2i(neg)
	tier, neg := Count(first(m, winnerTierKeys...))
	clamped += b2i(neg)
	return domain.WinnerEntry{
		Municipality: Text(first(m, winnerCityKeys...)),
		State:        State(first(m, winnerStateKeys...)),
		Winners:      winners,
		Tier:         tier,
	}, clamped
}

// firstList returns the first non-empty list found under keys.
// Non-list values (a winner count under "ganhadores") are passed over
func firstList(raw map[string]any, keys []string) []any {
	for _, k := range keys {
		if l, ok := raw[k].([]any); ok && len(l) > 0 {
			return l
		}
	}
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
