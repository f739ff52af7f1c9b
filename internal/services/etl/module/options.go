package module

import (
	"time"

	"loteria/internal/platform/config"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/validate"
)

// Options holds configuration options for the etl service
type Options struct {
	InsertChunk    int           `json:"insert_chunk" validate:"gte=1,lte=50000"`
	DefaultLottery string        `json:"default_lottery" validate:"max=64"`
	Samples        int           `json:"samples" validate:"gte=0,lte=1000"`
	LoadTimeout    time.Duration `json:"load_timeout" validate:"gte=0"`
	MirrorTimeout  time.Duration `json:"mirror_timeout" validate:"gte=0"`
	MaxRetries     int           `json:"retries" validate:"gte=1,lte=10"`
	RetryBase      time.Duration `json:"retry_base" validate:"gte=0"`
	Mirror         bool          `json:"mirror"`
}

// FromConfig reads the etl options from config with CORE_ETL_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_ETL_")
	return Options{
		InsertChunk:    c.MayInt("INSERT_CHUNK", 1000),
		DefaultLottery: c.MayString("DEFAULT_LOTTERY", ""),
		Samples:        c.MayInt("SAMPLES", 5),
		LoadTimeout:    c.MayDuration("LOAD_TIMEOUT", 5*time.Minute),
		MirrorTimeout:  c.MayDuration("MIRROR_TIMEOUT", 5*time.Minute),
		MaxRetries:     c.MayInt("RETRIES", 3),
		RetryBase:      c.MayDuration("RETRY_BASE", 500*time.Millisecond),
		Mirror:         c.MayBool("MIRROR", false),
	}
}

// Validate reports the first out-of-range option as a usage error
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		field, msg := perr.WireFrom(err).Field, err.Error()
		return perr.WithField(perr.Usagef("invalid option: %s", msg), field)
	}
	return nil
}
