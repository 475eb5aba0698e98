package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/database/seeders"
	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/shashiranjanraj/kproduct/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect()
}

// kproduct migrate
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
			return migration.New(db, cmd.OutOrStdout()).Run()
		},
	}
}

// kproduct migrate:rollback
func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Rollback the last batch of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
			return migration.New(db, cmd.OutOrStdout()).Rollback()
		},
	}
}

// kproduct migrate:status
func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			return migration.New(db, cmd.OutOrStdout()).PrintStatus()
		},
	}
}

// kproduct seed
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalogue into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(db, cmd.OutOrStdout())
		},
	}
}
