// Package main provides the entry point for the Workload Manager HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "workload_manager",
	Short: "Workload Manager HTTP API Server",
	Long:  "Workload Manager tracks jobs per user, estimates their duration from static rule tables, and keeps an append-only change history per job.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
