package reminder

import (
	"time"

	"rembot/pkg/errs"
	"rembot/pkg/timing"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	DefaultTZ        string        `envconfig:"DEFAULT_TZ" default:"+03:00"`
	ClarifyMaxRounds int           `envconfig:"CLARIFY_MAX_ROUNDS" default:"2"`
	ClarifyTTL       time.Duration `envconfig:"CLARIFY_TTL" default:"1h"`
	AdminIDs         []int64       `envconfig:"ADMIN_IDS"`
}

func (c *Config) Validate() *errs.Multi {
	e := errs.NewMulti()

	if !timing.ValidOffset(c.DefaultTZ) {
		e.Errf("DEFAULT_TZ should look like +03:00, got %q", c.DefaultTZ)
	}
	if c.ClarifyMaxRounds < 0 {
		e.Errf("CLARIFY_MAX_ROUNDS cannot be negative, got %d", c.ClarifyMaxRounds)
	}
	if c.ClarifyTTL <= 0 {
		e.Errf("CLARIFY_TTL should be positive, got %s", c.ClarifyTTL)
	}

	return e
}

func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminIDs) == 0 {
		return true
	}

	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("reminder", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reminder config")
	}

	return cfg, nil
}
