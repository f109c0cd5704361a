/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load document types from a YAML file",
	Long: `Create the document types listed in a YAML seed file. Types whose
name already exists are skipped, so the command can be re-run safely.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, logger, err := loadRuntime(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()

		seed, err := service.LoadDocumentTypeSeed(f)
		if err != nil {
			return err
		}

		db, err := database.ConnectWithRetry(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		result, err := service.SeedDocumentTypes(cmd.Context(), service.NewDocumentTypeService(db), seed)
		if result != nil {
			logger.WithFields(logrus.Fields{
				"created": len(result.Created),
				"skipped": len(result.Skipped),
			}).Info("document types seeded")
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
