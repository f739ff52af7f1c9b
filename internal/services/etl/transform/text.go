package transform

import (
	"loteria/internal/core/normalize"

	"github.com/jackc/pgx/v5/pgtype"
)

// Text folds, collapses and title-cases a free-text value
func Text(v any) pgtype.Text {
	s, ok := scalar(v)
	if !ok {
		return pgtype.Text{}
	}
	t := normalize.Title(s)
	if IsNullToken(t) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: t, Valid: true}
}

// Note folds and collapses a value but keeps its casing
func Note(v any) pgtype.Text {
	s, ok := scalar(v)
	if !ok {
		return pgtype.Text{}
	}
	t := normalize.Fold(s)
	if IsNullToken(t) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: t, Valid: true}
}
