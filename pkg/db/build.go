package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func Build(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	return NewConn(ctx, cfg)
}
