package transform

import (
	"encoding/json"
	"strings"
	"testing"

	"loteria/internal/core/refdata"
	"loteria/internal/platform/testkit"
)

func TestIsNull(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "  ", "-", "--", "N/A", "na", "NULL", "None", "nil", "NaN", "undefined", "s/n", "Sem Informação", "não informado", "\tnull\n"} {
		if !IsNull(s) {
			t.Fatalf("%q should be null", s)
		}
	}
	for _, v := range []any{"0", "Natal", json.Number("0"), false, []any{}} {
		if IsNull(v) {
			t.Fatalf("%#v should not be null", v)
		}
	}
	if !IsNull(nil) {
		t.Fatal("nil should be null")
	}
}

func TestDate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   any
		want string
	}{
		{"05/01/2020", "2020-01-05"},
		{"5/1/2020", "2020-01-05"},
		{"05-01-2020", "2020-01-05"},
		{"2020-01-05", "2020-01-05"},
		{"2020/1/5", "2020-01-05"},
		{" 2020-01-05 ", "2020-01-05"},
		{"2020-01-05T20:00:00", "2020-01-05"},
		{"2020-01-05T23:30:00Z", "2020-01-05"},
		{"2020-01-05T23:30:00-03:00", "2020-01-05"},
		{"2020-01-05T23:30:00.123+0100", "2020-01-05"},
		{"2020-01-05 20:00:00", "2020-01-05"},
		{"29/02/2020", "2020-02-29"},
		{"29/02/2019", ""},
		{"31/04/2020", ""},
		{"13/13/2020", ""},
		{"00/01/2020", ""},
		{"05/01-2020", ""},
		{"2020-01/05", ""},
		{"01/01/1800", ""},
		{"20200105", ""},
		{"ontem", ""},
		{"n/a", ""},
		{json.Number("20200105"), ""},
		{nil, ""},
		{true, ""},
	}
	for _, c := range cases {
		testkit.MustNotPanic(t, func() {
			if got := FormatDate(Date(c.in)); got != c.want {
				t.Fatalf("Date(%#v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestTextAndNote(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in        any
		text      string
		textValid bool
		note      string
	}{
		{"  SÃO   JOSÉ dos campos ", "Sao Jose Dos Campos", true, "SAO JOSE dos campos"},
		{"teresina\n", "Teresina", true, "teresina"},
		{"ESPAÇO DA SORTE", "Espaco Da Sorte", true, "ESPACO DA SORTE"},
		{json.Number("123"), "123", true, "123"},
		{"null", "", false, ""},
		{"\u200b", "", false, ""},
		{map[string]any{"a": 1}, "", false, ""},
	}
	for _, c := range cases {
		got := Text(c.in)
		if got.Valid != c.textValid || got.String != c.text {
			t.Fatalf("Text(%#v) = %+v", c.in, got)
		}
		if n := Note(c.in); n.String != c.note || n.Valid != (c.note != "") {
			t.Fatalf("Note(%#v) = %+v", c.in, n)
		}
	}
}

func TestMoney(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   any
		want string // "" is null
		neg  bool
	}{
		{json.Number("1000.50"), "1000.5", false},
		{json.Number("0"), "0", false},
		{1000.5, "1000.5", false},
		{"1000.50", "1000.5", false},
		{"1.000,50", "1000.5", false},
		{"R$ 1.000,50", "1000.5", false},
		{"R$1.234.567,89", "1234567.89", false},
		{"1,000.50", "1000.5", false},
		{"1.234.567", "1234567", false},
		{"12,5", "12.5", false},
		{"R$ 1.000", "1000", false},
		{"R$ 12.500", "12500", false},
		{"1.000", "1000", false},
		{"0.500", "0.5", false},
		{"1000.500", "1000.5", false},
		{"1.5", "1.5", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"-", "", false},
		{"-10", "", true},
		{json.Number("-0.01"), "", true},
		{true, "", false},
		{nil, "", false},
	}
	for _, c := range cases {
		d, neg := Money(c.in)
		got := ""
		if d.Valid {
			got = d.Decimal.String()
		}
		if got != c.want || neg != c.neg {
			t.Fatalf("Money(%#v) = %q,%v want %q,%v", c.in, got, neg, c.want, c.neg)
		}
	}
}

func TestCount(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in    any
		want  int64
		valid bool
		neg   bool
	}{
		{json.Number("2"), 2, true, false},
		{"2", 2, true, false},
		{"2.0", 2, true, false},
		{2.0, 2, true, false},
		{"1.234", 1234, true, false},
		{"1,234,567", 1234567, true, false},
		{"2.5", 0, false, false},
		{json.Number("2.5"), 0, false, false},
		{"dois", 0, false, false},
		{"-3", 0, false, true},
		{json.Number("99999999999999999999"), 0, false, false},
		{false, 0, false, false},
	}
	for _, c := range cases {
		n, neg := Count(c.in)
		if n.Valid != c.valid || n.Int64 != c.want || neg != c.neg {
			t.Fatalf("Count(%#v) = %+v,%v", c.in, n, neg)
		}
	}
}

func TestBool(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in          any
		val, nonNil bool
	}{
		{true, true, true},
		{false, false, true},
		{"Sim", true, true},
		{"NÃO", false, true},
		{"true", true, true},
		{json.Number("1"), true, true},
		{json.Number("0"), false, true},
		{json.Number("2"), false, false},
		{"talvez", false, false},
		{"s/n", false, false},
		{nil, false, false},
	}
	for _, c := range cases {
		b := Bool(c.in)
		if b.Valid != c.nonNil || b.Bool != c.val {
			t.Fatalf("Bool(%#v) = %+v", c.in, b)
		}
	}
}

func TestNumbers(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"json ints", []any{json.Number("2"), json.Number("15")}, "[2,15]"},
		{"floats", []any{2.0, 15.0}, "[2,15]"},
		{"padded strings", []any{"02", " 15 ", "x", nil}, "[2,15]"},
		{"fractions dropped", []any{json.Number("2.5"), json.Number("3")}, "[3]"},
		{"range", []any{json.Number("-1"), json.Number("0"), json.Number("999"), json.Number("1000")}, "[0,999]"},
		{"delimited", "02,15 33-41", "[2,15,33,41]"},
		{"json in string", "[\"05\", 7]", "[5,7]"},
		{"bad json in string falls back", "[1, 2", "[1,2]"},
		{"single number", json.Number("7"), "[7]"},
		{"single string", "07", "[7]"},
		{"order kept", []any{json.Number("41"), json.Number("2")}, "[41,2]"},
		{"duplicates kept", "5 5", "[5,5]"},
		{"null token", "n/a", "null"},
		{"empty list", []any{}, "null"},
		{"absent", nil, "null"},
		{"object", map[string]any{}, "null"},
	}
	for _, c := range cases {
		b, _ := json.Marshal(Numbers(c.in))
		if string(b) != c.want {
			t.Fatalf("%s: Numbers(%#v) = %s, want %s", c.name, c.in, b, c.want)
		}
	}
}

func TestState(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   any
		want string
	}{
		{"SP", "SP"},
		{" sp ", "SP"},
		{"S.P.", "SP"},
		{"Boa Vista RR", "RR"},
		{"Boa Vista - RR", "RR"},
		{"Teresina/PI", "PI"},
		{"São Paulo", "SP"},
		{"PARÁ", "PA"},
		{"Mato Grosso do Sul", "MS"},
		{"mato grosso", "MT"},
		{"XX", ""},
		{"0", ""},
		{json.Number("0"), ""},
		{"--", ""},
		{"N/A", ""},
		{"Paraíso do Norte", ""},
		{"CANAL ELETRONICO", ""},
		{"S", ""},
		{nil, ""},
	}
	for _, c := range cases {
		got := State(c.in)
		if got.String != c.want || got.Valid != (c.want != "") {
			t.Fatalf("State(%#v) = %+v, want %q", c.in, got, c.want)
		}
		if got.Valid && !refdata.Valid(got.String) {
			t.Fatalf("State(%#v) escaped the table: %q", c.in, got.String)
		}
	}
}

// every output of State is null or a known code, whatever the input
func TestStateClosure(t *testing.T) {
	t.Parallel()
	inputs := []string{"", "a", "AB", "RR RR", "..", "SPX", "XSP", "para", "rio", "RIO DE JANEIRO RJ",
		"Distrito Federal", "df", "mg.", "123", "Brasília - DF", "exterior", "ES ", "es pa", "TO/GO"}
	for _, s := range inputs {
		if got := State(s); got.Valid && !refdata.Valid(got.String) {
			t.Fatalf("State(%q) = %q not in table", s, got.String)
		}
	}
	for _, st := range refdata.All() {
		if got := State(strings.ToLower(st.Code)); got.String != st.Code {
			t.Fatalf("code %s did not round trip: %+v", st.Code, got)
		}
		if got := State(st.Name); got.String != st.Code {
			t.Fatalf("name %s did not resolve: %+v", st.Name, got)
		}
	}
}
