package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register migrations and seeders through their init() funcs.
	_ "github.com/shashiranjanraj/shopfront/database/migrations"
	_ "github.com/shashiranjanraj/shopfront/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shopfront",
	Short:         "Shopfront e-commerce API",
	Long:          "Shopfront serves the catalogue, checkout, payments and admin dashboard APIs over MongoDB.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
