package domain

import (
	"context"

	"loteria/internal/core/refdata"
)

// Request describes one run
type Request struct {
	Input string
	Mode  Mode
}

// RunnerPort is the public port of the etl module
type RunnerPort interface {
	Run(ctx context.Context, req Request) (Outcome, error)
}

// StorageRepo is the relational load target, bound to one transaction
type StorageRepo interface {
	// EnsureSchema creates the four relations when missing
	EnsureSchema(ctx context.Context) error

	// Truncate empties all four relations
	Truncate(ctx context.Context) error

	InsertStates(ctx context.Context, ss []refdata.State) (int, error)
	InsertContests(ctx context.Context, cs []ContestRow) (int, error)
	InsertPrizes(ctx context.Context, ps []PrizeRow) (int, error)
	InsertWinners(ctx context.Context, ws []WinnerRow) (int, error)

	// Counts returns the row count of each relation, keyed by table name
	Counts(ctx context.Context) (map[string]int64, error)
}

// Mirror rebuilds the committed load in a secondary store
type Mirror interface {
	Replace(ctx context.Context, l Load) error
}

// ReaderPort streams raw records; Next returns io.EOF at the end
type ReaderPort interface {
	Next() (any, error)
	Close() error
	Stats() (records int, bytes int64)
}

// Source opens a ReaderPort for an input path
type Source interface {
	Open(ctx context.Context, path string) (ReaderPort, error)
}

// Normalizer turns one raw object into a Record, or a *Skip error
type Normalizer interface {
	Normalize(raw map[string]any) (Record, Issues, error)
}

// Decomposer splits a Record into rows
type Decomposer interface {
	Decompose(r Record) Decomposed
}
