/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Create or update the document, document type, approval step and
activity log tables together with their indexes, using the database
configured in the config file or APP_DATABASE_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"driver": cfg.Database.Driver,
			"host":   cfg.Database.Host,
			"dbname": cfg.Database.DBName,
		}).Info("connecting to database")

		db, err := database.ConnectWithRetry(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		logger.Info("database migrations completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
