package migrate

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed files/*.sql
var migrations embed.FS

const migrationsDir = "files"

var setupOnce sync.Once
var setupErr error

// goose keeps its base fs and dialect in package globals.
func setup() error {
	setupOnce.Do(func() {
		goose.SetBaseFS(migrations)
		goose.SetLogger(logrus.StandardLogger())
		setupErr = goose.SetDialect("sqlite3")
	})

	return errors.Wrap(setupErr, "failed to set migration dialect")
}

// Execute applies all pending schema migrations.
func Execute(ctx context.Context, dbConn *sql.DB) error {
	err := setup()
	if err != nil {
		return err
	}

	err = goose.UpContext(ctx, dbConn, migrationsDir)
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	return nil
}

// Status logs the state of every known migration.
func Status(ctx context.Context, dbConn *sql.DB) error {
	err := setup()
	if err != nil {
		return err
	}

	err = goose.StatusContext(ctx, dbConn, migrationsDir)
	if err != nil {
		return errors.Wrap(err, "failed to check migration status")
	}

	return nil
}

// Version is the last applied migration.
func Version(ctx context.Context, dbConn *sql.DB) (int64, error) {
	err := setup()
	if err != nil {
		return 0, err
	}

	v, err := goose.GetDBVersionContext(ctx, dbConn)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read migration version")
	}

	return v, nil
}
