// Package transform normalizes raw draw records and splits them into rows.
// Every function here is pure; unusable values become null, never errors
package transform

import (
	"encoding/json"
	"strconv"
	"strings"

	"loteria/internal/core/normalize"
)

// null markers, compared after Key folding
var nullTokens = map[string]struct{}{
	"":               {},
	"-":              {},
	"--":             {},
	"N/A":            {},
	"NA":             {},
	"NULL":           {},
	"NONE":           {},
	"NIL":            {},
	"NAN":            {},
	"UNDEFINED":      {},
	"S/N":            {},
	"SEM INFORMACAO": {},
	"NAO INFORMADO":  {},
}

// IsNullToken reports whether s is empty, blank or a null marker
func IsNullToken(s string) bool {
	_, ok := nullTokens[normalize.Key(s)]
	return ok
}

// IsNull reports whether a raw value is absent or a null marker string
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return IsNullToken(x)
	}
	return false
}

// scalar renders a string or number as text; nulls, bools and containers give false
func scalar(v any) (string, bool) {
	if IsNull(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}

// first returns the value of the first key present and not null
func first(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && !IsNull(v) {
			return v
		}
	}
	return nil
}
