package cmd

import (
	"fmt"

	"coursetrack/backend/config"
	"coursetrack/backend/storage"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the storage table for the SQL drivers",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch cfg.StorageDriver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "storage driver %q has no schema, nothing to do\n", cfg.StorageDriver)
		return nil
	}

	db, err := storage.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := storage.NewSQL(db).Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s storage\n", cfg.StorageDriver)
	return nil
}
