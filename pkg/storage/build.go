package storage

import (
	"github.com/sirupsen/logrus"
)

// BuildClient picks redis when REDIS_ADDR is configured and falls back to process memory.
func BuildClient() (Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		logrus.Warn("REDIS_ADDR is empty, bot state is kept in memory and lost on restart")
		return NewMemoryClient(), nil
	}

	return NewRedisClient(cfg)
}
