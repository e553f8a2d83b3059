package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/PriceView/internal/dataset"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a dataset JSON file in Postgres",
	Long:  "Reads a {prices, meta} document and saves it as a new extraction. Prints the new extraction id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return eris.New("DATABASE_URL is required for import")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ds, err := dataset.ReadFile(args[0])
		if err != nil {
			return err
		}

		pool, err := dataset.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := dataset.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		id, err := store.Save(ctx, ds)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
