// Package ingest adapts the json feed reader to the etl ports
package ingest

import (
	"context"
	"io"
	"os"

	"loteria/internal/adapters/ingest/jsonfeed"
	"loteria/internal/platform/logger"
	"loteria/internal/services/etl/domain"
)

// Stdin is the input path that reads standard input
const Stdin = "-"

type source struct {
	stdin io.ReadCloser
}

// NewSource returns a domain.Source over local files, or stdin for "-"
func NewSource() domain.Source { return source{stdin: os.Stdin} }

func (s source) Open(ctx context.Context, path string) (domain.ReaderPort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		rd  *jsonfeed.Reader
		err error
	)
	if path == Stdin {
		rd, err = jsonfeed.NewReader(s.stdin)
	} else {
		rd, err = jsonfeed.Open(path)
	}
	if err != nil {
		return nil, err
	}
	logger.C(ctx).Debug().Str("path", path).Msg("input opened")
	return rd, nil
}
