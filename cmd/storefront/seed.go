package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motlupets/storefront/internal/infrastructure/config"
	mongodb "github.com/motlupets/storefront/internal/infrastructure/db/mongo"
	"github.com/motlupets/storefront/internal/seed"
	"github.com/motlupets/storefront/pkg/logger"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert catalog products from a YAML file",
		Long: `Upsert catalog products from a YAML file. Products are matched by title,
so running the same file twice updates instead of duplicating.

Examples:
  storefront seed --file config/seed/products.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "config/seed/products.yaml", "seed file path")

	return cmd
}

func runSeed(ctx context.Context, file string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront-seed",
		Env:     cfg.Env,
		Version: Version,
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	products := mongodb.NewProductRepository(db)
	if err := mongodb.EnsureIndexes(ctx, products); err != nil {
		return err
	}

	res, err := seed.NewLoader(products, log).LoadFile(ctx, file)
	if err != nil {
		return fmt.Errorf("seed %s: %w", file, err)
	}
	log.Info().
		Str("file", file).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Msg("catalog seeded")
	return nil
}
