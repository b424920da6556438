package monitoring

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Addr string `envconfig:"METRICS_ADDR"`
}

func LoadConfig() (cfg *Config, err error) {
	cfg = new(Config)
	err = envconfig.Process("metrics", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load metrics config")
	}

	return cfg, nil
}
