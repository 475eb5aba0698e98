// Command kproduct runs the catalogue service and its maintenance tasks.
//
//	kproduct serve
//	kproduct migrate
//	kproduct seed
//	kproduct route:list
//	kproduct images:export --disk s3
//	kproduct token:issue --subject admin --authorities ROLE_ADMIN,ROLE_USER
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the schema migrations and seeders.
	_ "github.com/shashiranjanraj/kproduct/database/migrations"
	_ "github.com/shashiranjanraj/kproduct/database/seeders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kproduct",
		Short:         "kproduct: product catalogue and order service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Server
	root.AddCommand(serveCmd())
	root.AddCommand(routeListCmd())

	// Database
	root.AddCommand(migrateCmd())
	root.AddCommand(migrateRollbackCmd())
	root.AddCommand(migrateStatusCmd())
	root.AddCommand(seedCmd())

	// Tools
	root.AddCommand(imagesExportCmd())
	root.AddCommand(tokenIssueCmd())
	return root
}
