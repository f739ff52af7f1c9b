// Package refdata holds the fixed table of Brazilian federative units
package refdata

import (
	"slices"
	"strings"
)

// State is one federative unit
type State struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// Regions
const (
	Norte       = "Norte"
	Nordeste    = "Nordeste"
	CentroOeste = "Centro-Oeste"
	Sudeste     = "Sudeste"
	Sul         = "Sul"
)

// names are stored diacritic-free, matching the folded text the loader produces
var states = [...]State{
	{"AC", "Acre", Norte},
	{"AL", "Alagoas", Nordeste},
	{"AP", "Amapa", Norte},
	{"AM", "Amazonas", Norte},
	{"BA", "Bahia", Nordeste},
	{"CE", "Ceara", Nordeste},
	{"DF", "Distrito Federal", CentroOeste},
	{"ES", "Espirito Santo", Sudeste},
	{"GO", "Goias", CentroOeste},
	{"MA", "Maranhao", Nordeste},
	{"MT", "Mato Grosso", CentroOeste},
	{"MS", "Mato Grosso do Sul", CentroOeste},
	{"MG", "Minas Gerais", Sudeste},
	{"PA", "Para", Norte},
	{"PB", "Paraiba", Nordeste},
	{"PR", "Parana", Sul},
	{"PE", "Pernambuco", Nordeste},
	{"PI", "Piaui", Nordeste},
	{"RJ", "Rio de Janeiro", Sudeste},
	{"RN", "Rio Grande do Norte", Nordeste},
	{"RS", "Rio Grande do Sul", Sul},
	{"RO", "Rondonia", Norte},
	{"RR", "Roraima", Norte},
	{"SC", "Santa Catarina", Sul},
	{"SP", "Sao Paulo", Sudeste},
	{"SE", "Sergipe", Nordeste},
	{"TO", "Tocantins", Norte},
}

var (
	byCode = make(map[string]State, len(states))
	byName = make(map[string]State, len(states))
)

func init() {
	for _, s := range states {
		byCode[s.Code] = s
		byName[strings.ToUpper(s.Name)] = s
	}
}

// Lookup returns the state for an exact uppercase code
func Lookup(code string) (State, bool) {
	s, ok := byCode[code]
	return s, ok
}

// Valid reports whether code is one of the 27 codes
func Valid(code string) bool {
	_, ok := byCode[code]
	return ok
}

// ByName matches an uppercase, diacritic-free full name ("SAO PAULO")
func ByName(name string) (State, bool) {
	s, ok := byName[name]
	return s, ok
}

// All returns a copy of the table ordered by code
func All() []State {
	out := states[:]
	out = slices.Clone(out)
	slices.SortFunc(out, func(a, b State) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// Len is the number of units in the table
func Len() int { return len(states) }
