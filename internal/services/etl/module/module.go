// Package module wires the etl service from deps and CORE_ETL_ config
package module

import (
	"loteria/internal/modkit"
	"loteria/internal/platform/logger"

	"loteria/internal/services/etl/domain"
	"loteria/internal/services/etl/guardrails"
	"loteria/internal/services/etl/ingest"
	"loteria/internal/services/etl/mirror"
	"loteria/internal/services/etl/repo"
	"loteria/internal/services/etl/service"
	"loteria/internal/services/etl/transform"
)

// Ports defines the etl module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the etl module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the etl module from deps and CORE_ETL_* config.
// deps.PG nil limits the runner to preview; deps.CH nil disables the mirror
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var mir domain.Mirror
	if deps.CH != nil {
		mir = mirror.New(deps.CH)
	} else if opts.Mirror {
		logger.Named("etl").Warn().Msg("CORE_ETL_MIRROR is set but no clickhouse is configured; mirror disabled")
	}

	svc := service.New(
		deps.PG, repo.NewPG(),
		ingest.NewSource(),
		transform.Normalizer{DefaultLottery: opts.DefaultLottery},
		transform.Decomposer{},
		mir,
		service.Config{
			InsertChunk: opts.InsertChunk,
			MaxRetries:  opts.MaxRetries,
			RetryBase:   opts.RetryBase,
			Timeouts: guardrails.Timeouts{
				Load:   opts.LoadTimeout,
				Mirror: opts.MirrorTimeout,
			},
			Mirror: opts.Mirror && mir != nil,
		},
	)

	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "etl" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }
