package pg

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"loteria/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that always prints SQL regardless of the root level.
// Bulk array arguments are summarised by length so chunked loads stay readable
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Strs("args", summarize(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

func compact(s string) string { return strings.Join(strings.Fields(s), " ") }

func summarize(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = argSummary(a)
	}
	return out
}

func argSummary(a any) string {
	if a == nil {
		return "NULL"
	}
	if rv := reflect.ValueOf(a); rv.Kind() == reflect.Slice {
		return fmt.Sprintf("%s[%d]", rv.Type().Elem(), rv.Len())
	}
	s := fmt.Sprint(a)
	if len(s) > 64 {
		s = s[:61] + "..."
	}
	return s
}
