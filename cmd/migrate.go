package main

import (
	"github.com/spf13/cobra"

	"github.com/lgrosz/climb-catalog/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema and seed lookup tables, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("schema up to date", "driver", cfg.DBDriver)
		return nil
	},
}
