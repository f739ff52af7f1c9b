package store

import (
	"time"

	"loteria/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // ping attempts before giving up
	PingTimeout    time.Duration // per attempt
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
	LogSQL  bool
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* under c.
// Backends are enabled when their DBURL is set; callers may override
func ConfigFromEnv(c config.Conf, appName string) Config {
	pgc := c.Prefix("SERVICE_PGSQL_")
	chc := c.Prefix("SERVICE_CLICKHOUSE_")
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        pgc.Has("DBURL"),
			URL:            pgc.MayString("DBURL", ""),
			MaxConns:       int32(pgc.MayPositiveInt("MAX_CONNS", 4)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 500),
			ConnectRetries: pgc.MayPositiveInt("CONNECT_RETRIES", 6),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: chc.Has("DBURL"),
			URL:     chc.MayString("DBURL", ""),
			Role:    "mirror",
			LogSQL:  chc.MayBool("LOG_SQL", false),
		},
	}
}
