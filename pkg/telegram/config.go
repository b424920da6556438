package telegram

import (
	"os"
	"time"

	"rembot/pkg/errs"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	APIToken     string        `envconfig:"TELEGRAM_TOKEN"`
	PollTimeout  time.Duration `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"10s"`
	SendRetryMax time.Duration `envconfig:"TELEGRAM_SEND_RETRY_MAX" default:"30s"`
}

func (c *Config) Validate() *errs.Multi {
	e := errs.NewMulti()

	if c.APIToken == "" {
		e.Err("TELEGRAM_TOKEN (or BOT_TOKEN) cannot be empty")
	}
	if c.PollTimeout <= 0 {
		e.Errf("TELEGRAM_POLL_TIMEOUT should be positive, got %s", c.PollTimeout)
	}

	return e
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("telegram", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load telegram config")
	}

	if cfg.APIToken == "" {
		cfg.APIToken = os.Getenv("BOT_TOKEN")
	}

	return cfg, nil
}
