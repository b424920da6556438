package llm

import (
	"os"
	"strings"
	"time"

	"rembot/pkg/errs"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.openai.com"

type Config struct {
	APIKey          string        `envconfig:"OPENAI_API_KEY"`
	Model           string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL         string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	Temperature     float64       `envconfig:"OPENAI_TEMPERATURE" default:"0.2"`
	Timeout         time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	TranscribeModel string        `envconfig:"OPENAI_TRANSCRIBE_MODEL" default:"whisper-1"`
}

func (c *Config) Validate() *errs.Multi {
	e := errs.NewMulti()

	if c.Model == "" {
		e.Err("OPENAI_MODEL cannot be empty")
	}
	if c.Timeout <= 0 {
		e.Errf("OPENAI_TIMEOUT should be positive, got %s", c.Timeout)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		e.Errf("OPENAI_TEMPERATURE should be within [0, 2], got %v", c.Temperature)
	}

	return e
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)

	err = envconfig.Process("openai", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load openai config")
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_APIKEY")
	}
	if cfg.APIKey == "" {
		logrus.Warn("OPENAI_API_KEY is not set, every reminder text will be answered as not understood")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return cfg, nil
}
