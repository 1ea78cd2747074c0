package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/workload-manager/internal/config"
	"github.com/jonathan/workload-manager/internal/db"
)

var migrateSchemaPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Apply db/schema.sql to the database named by DATABASE_URL. The DDL is idempotent (CREATE TABLE IF NOT EXISTS).`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSchemaPath, "schema", "db/schema.sql", "Path to the schema DDL file")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	databaseURL, err := config.NormalizeDatabaseURL(databaseURL)
	if err != nil {
		return err
	}

	ddl, err := os.ReadFile(migrateSchemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.ApplySchema(ctx, string(ddl)); err != nil {
		return err
	}

	fmt.Println("schema applied")
	return nil
}
