package scheduler

import (
	"time"

	"rembot/pkg/errs"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Interval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"30s"`
	FirstRun time.Duration `envconfig:"SCHEDULER_FIRST_RUN" default:"5s"`
}

func (c *Config) Validate() *errs.Multi {
	e := errs.NewMulti()

	if c.Interval <= 0 {
		e.Errf("SCHEDULER_INTERVAL should be positive, got %s", c.Interval)
	}
	if c.FirstRun < 0 {
		e.Errf("SCHEDULER_FIRST_RUN cannot be negative, got %s", c.FirstRun)
	}

	return e
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("scheduler", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load scheduler config")
	}

	return cfg, nil
}
