package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// NewConn opens the reminders database. SQLite allows one writer at a time, so the
// pool is limited to a single connection; this also keeps ":memory:" databases
// alive between queries.
func NewConn(ctx context.Context, cfg *Config) (*sqlx.DB, error) {
	e := cfg.Validate()
	if e.HasErrors() {
		return nil, e
	}

	conn, err := sqlx.Open(driverName, dsn(cfg.Path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", cfg.Path)
	}
	conn.SetMaxOpenConns(1)

	err = conn.PingContext(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg.Path)
	}

	logrus.Infof("opened sqlite database %s", cfg.Path)

	return conn, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}

	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
