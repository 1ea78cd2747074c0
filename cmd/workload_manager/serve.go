package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/workload-manager/internal/config"
	"github.com/jonathan/workload-manager/internal/schemas"
	"github.com/jonathan/workload-manager/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for workload items, their history, and per-user summaries.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	schemaPath := cfg.RulesSchemaPath
	if cfg.RulesPath != "" && schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath("db/rules.schema.json")
	}

	srv, err := server.New(server.Config{
		Port:            cfg.Port,
		DatabaseURL:     cfg.DatabaseURL,
		RulesPath:       cfg.RulesPath,
		RulesSchemaPath: schemaPath,
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          config.NewLogger(cfg.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
