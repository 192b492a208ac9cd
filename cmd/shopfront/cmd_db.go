package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/database/seeders"
	"github.com/shashiranjanraj/shopfront/internal/server"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

var errNeedsMongo = errors.New("migrations need DB_DRIVER=mongo")

// runner loads config, connects to Mongo and returns a migration runner
// with a cleanup func.
func runner(ctx context.Context) (*migration.Runner, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	if config.DatabaseDriver() != "mongo" {
		return nil, nil, errNeedsMongo
	}
	if err := database.Connect(ctx); err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = database.Disconnect(context.Background()) }

	store, err := migration.NewMongoStore(ctx, database.DB)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	r := migration.New(database.DB, store)
	if err := r.Check(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}

// shopfront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cleanup, err := runner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Println("Running migrations…")
		return r.Run(cmd.Context())
	},
}

// shopfront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:     "migrate:rollback",
	Aliases: []string{"migrate:down"},
	Short:   "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cleanup, err := runner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Println("Rolling back last batch…")
		return r.Rollback(cmd.Context())
	},
}

// shopfront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cleanup, err := runner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return r.Status(cmd.Context())
	},
}

// shopfront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close(context.Background())

		fmt.Println("Running seeders…")
		return seeders.RunAll(cmd.Context(), rt.Services(), cmd.OutOrStdout())
	},
}
