package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/pkg/auth"
	"github.com/shashiranjanraj/kproduct/pkg/cache"
	"github.com/shashiranjanraj/kproduct/pkg/storage"
)

// kproduct images:export
func imagesExportCmd() *cobra.Command {
	var disk string
	cmd := &cobra.Command{
		Use:   "images:export",
		Short: "Copy every stored product image to a storage disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootDB()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			disks, err := storage.Connect(ctx)
			if err != nil {
				return err
			}
			d, err := disks.Use(disk)
			if err != nil {
				return err
			}

			n, err := services.NewProductService(db, cache.Disabled(), nil).ExportImages(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d product images to %s\n", n, d.URL("products"))
			return nil
		},
	}
	cmd.Flags().StringVar(&disk, "disk", "", "storage disk (local or s3); defaults to STORAGE_DISK")
	return cmd
}

// kproduct token:issue
func tokenIssueCmd() *cobra.Command {
	var (
		subject     string
		authorities string
		ttl         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token:issue",
		Short: "Sign an API bearer token with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			var granted []string
			for _, a := range strings.Split(authorities, ",") {
				if a = strings.TrimSpace(a); a != "" {
					granted = append(granted, a)
				}
			}
			token, err := auth.GenerateToken(subject, granted, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().StringVar(&authorities, "authorities", "ROLE_USER", "comma-separated authorities")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
