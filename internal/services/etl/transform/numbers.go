package transform

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"loteria/internal/core/normalize"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxBall = 999

var (
	plainDecimal = regexp.MustCompile(`^\d+(\.\d+)?$`)
	grouped      = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
	dotGroup     = regexp.MustCompile(`^[1-9]\d{0,2}\.\d{3}$`)
)

// Money coerces a monetary value. Strings may carry R$, thousands separators
// and a decimal comma ("R$ 1.000,50"). neg reports a clamped negative
func Money(v any) (d decimal.NullDecimal, neg bool) {
	x, ok := decimalOf(v, false)
	if !ok {
		return decimal.NullDecimal{}, false
	}
	if x.IsNegative() {
		return decimal.NullDecimal{}, true
	}
	return decimal.NewNullDecimal(x), false
}

// Count coerces a whole, non-negative number. A string made only of digit
// groups ("1.234") reads as thousands. neg reports a clamped negative
func Count(v any) (n pgtype.Int8, neg bool) {
	x, ok := decimalOf(v, true)
	if !ok || !x.IsInteger() {
		return pgtype.Int8{}, false
	}
	if x.IsNegative() {
		return pgtype.Int8{}, true
	}
	if x.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return pgtype.Int8{}, false
	}
	return pgtype.Int8{Int64: x.IntPart(), Valid: true}, false
}

// Bool accepts JSON booleans, 0/1 and yes/no words in english or portuguese
func Bool(v any) pgtype.Bool {
	switch x := v.(type) {
	case bool:
		return pgtype.Bool{Bool: x, Valid: true}
	case json.Number, float64, int, int64:
		s, _ := scalar(x)
		switch s {
		case "1":
			return pgtype.Bool{Bool: true, Valid: true}
		case "0":
			return pgtype.Bool{Bool: false, Valid: true}
		}
	case string:
		if IsNullToken(x) {
			return pgtype.Bool{}
		}
		switch normalize.Key(x) {
		case "TRUE", "T", "SIM", "S", "YES", "Y", "1":
			return pgtype.Bool{Bool: true, Valid: true}
		case "FALSE", "F", "NAO", "N", "NO", "0":
			return pgtype.Bool{Bool: false, Valid: true}
		}
	}
	return pgtype.Bool{}
}

// decimalOf reads numbers and numeric strings; groups enables digit-group reading for counts
func decimalOf(v any, groups bool) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		if IsNullToken(x) {
			return decimal.Decimal{}, false
		}
		return parseNumeric(x, groups)
	}
	return decimal.Decimal{}, false
}

func parseNumeric(s string, groups bool) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "r$")

	sign := ""
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = "-", s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return decimal.Decimal{}, false
	}

	if groups && grouped.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	} else {
		s = canonicalSeparators(s)
	}
	if !plainDecimal.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(sign + s)
	return d, err == nil
}

// canonicalSeparators rewrites s so that "." is the only, decimal, separator.
// With both marks the later one is decimal. A lone comma is decimal; a repeated
// mark of either kind is grouping, and so is a lone dot before exactly three
// digits ("1.000" is R$ 1000, as written in pt-BR)
func canonicalSeparators(s string) string {
	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		return strings.Replace(s, ",", ".", 1)
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots > 1, dotGroup.MatchString(s):
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// Numbers coerces any drawn-number shape into a list of ints in source order.
// Accepts a list of numbers or numeric strings, a JSON array in a string, a
// delimited string ("02,15 33-41") or a single number. Values outside 0..999
// are dropped. Nothing usable gives nil
func Numbers(v any) []int {
	var out []int
	add := func(n int) {
		if n >= 0 && n <= maxBall {
			out = append(out, n)
		}
	}

	switch x := v.(type) {
	case []any:
		for _, e := range x {
			switch ev := e.(type) {
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(ev)); err == nil {
					add(n)
				}
			default:
				if n, ok := wholeOf(ev); ok {
					add(n)
				}
			}
		}
	case []int:
		for _, n := range x {
			add(n)
		}
	case string:
		s := strings.TrimSpace(x)
		if IsNullToken(s) {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var list []any
			dec := json.NewDecoder(strings.NewReader(s))
			dec.UseNumber()
			if err := dec.Decode(&list); err == nil {
				return Numbers(list)
			}
		}
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
			if n, err := strconv.Atoi(f); err == nil {
				add(n)
			}
		}
	default:
		if n, ok := wholeOf(x); ok {
			add(n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func wholeOf(v any) (int, bool) {
	switch v.(type) {
	case json.Number, float64, int, int64:
	default:
		return 0, false
	}
	d, ok := decimalOf(v, false)
	if !ok || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(maxBall)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// contestNumber reads the required contest number; ok false means invalid
func contestNumber(v any) (int64, bool) {
	n, neg := Count(v)
	if neg || !n.Valid || n.Int64 <= 0 {
		return 0, false
	}
	return n.Int64, true
}
