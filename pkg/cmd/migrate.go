package cmd

import (
	"rembot/pkg/db"
	"rembot/pkg/migrate"

	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applies pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		conn, err := db.Build(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if migrateStatus {
			return migrate.Status(ctx, conn.DB)
		}

		err = migrate.Execute(ctx, conn.DB)
		if err != nil {
			return err
		}

		version, err := migrate.Version(ctx, conn.DB)
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}

		logging.Infof("database schema is at version %d", version)

		return nil
	},
}

func initMigrateCmd() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print applied and pending migrations instead of applying them")
	rootCmd.AddCommand(migrateCmd)
}
