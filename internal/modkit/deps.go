// Package modkit provides module wiring and core deps
package modkit

import (
	"loteria/internal/modkit/repokit"
	"loteria/internal/platform/config"
	"loteria/internal/platform/logger"
	"loteria/internal/platform/store"
)

// Deps holds core dependencies passed to modules.
// PG and CH are nil when the run does not touch that backend
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
