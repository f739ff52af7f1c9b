// Package normalize folds free text from draw records into a stable form.
// Pipeline order
// 1 strip control bytes and invalid UTF-8
// 2 Unicode NFKD decomposition
// 3 remove combining marks (diacritics) and format chars
// 4 width fold fullwidth to ASCII, then NFC recompose
// 5 collapse whitespace to single spaces and trim
// Title and Key then apply Brazilian Portuguese casing on top of Fold
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// chains are stateful; each caller borrows one
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

var tag = language.BrazilianPortuguese

// Fold strips controls and diacritics and collapses whitespace, keeping case
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// Title is Fold followed by title casing ("SÃO  JOSÉ dos campos" -> "Sao Jose Dos Campos")
func Title(s string) string {
	f := Fold(s)
	if f == "" {
		return ""
	}
	return cases.Title(tag).String(f)
}

// Key is Fold followed by upper casing; use it to compare tokens and names
func Key(s string) string {
	f := Fold(s)
	if f == "" {
		return ""
	}
	return cases.Upper(tag).String(f)
}
