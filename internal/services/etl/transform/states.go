package transform

import (
	"strings"

	"loteria/internal/core/normalize"
	"loteria/internal/core/refdata"

	"github.com/jackc/pgx/v5/pgtype"
)

// placeholders some feeds use for an unknown state
var stateNulls = map[string]struct{}{"0": {}, "00": {}, "XX": {}, "--": {}}

// State resolves a raw state value to a code in refdata, or null.
// Tried in order: the whole value as a code ("S.P." included), its last word as a code
// ("Boa Vista RR"), the whole value as a state name ("Sao Paulo")
func State(v any) pgtype.Text {
	s, ok := scalar(v)
	if !ok {
		return pgtype.Text{}
	}
	k := normalize.Key(s)
	if _, isNull := stateNulls[k]; isNull || IsNullToken(k) {
		return pgtype.Text{}
	}

	if compact := strings.NewReplacer(".", "", ",", "").Replace(k); refdata.Valid(compact) {
		return pgtype.Text{String: compact, Valid: true}
	}

	words := strings.FieldsFunc(k, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	})
	if len(words) == 0 {
		return pgtype.Text{}
	}
	if len(words) == 1 && refdata.Valid(words[0]) {
		return pgtype.Text{String: words[0], Valid: true}
	}
	if last := words[len(words)-1]; len(words) > 1 && refdata.Valid(last) {
		return pgtype.Text{String: last, Valid: true}
	}
	if st, ok := refdata.ByName(strings.Join(words, " ")); ok {
		return pgtype.Text{String: st.Code, Valid: true}
	}
	return pgtype.Text{}
}
