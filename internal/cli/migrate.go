package cli

import (
	"Faran/internal/repository/store"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := store.Open(cfg.Database, gormLogger(log))
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := store.Migrate(db); err != nil {
			return err
		}
		log.WithField("driver", cfg.Database.Driver).Info("migration finished")
		return nil
	},
}
