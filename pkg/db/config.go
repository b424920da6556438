package db

import (
	"rembot/pkg/errs"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Path string `envconfig:"DB_PATH" default:"reminders.db"`
}

func (c *Config) Validate() *errs.Multi {
	e := errs.NewMulti()

	if c.Path == "" {
		e.Errf("DB_PATH cannot be empty")
	}

	return e
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("db", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load db config")
	}

	return cfg, nil
}
