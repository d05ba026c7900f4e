package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	menuPath := flag.String("menu", "data/menu.yaml", "path to the menu fixture")
	migrate := flag.Bool("migrate", true, "apply the schema before seeding")
	flag.Parse()

	cfg, err := config.LoadGateway()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	menu, err := seed.LoadFile(*menuPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Gateway, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise gateway connection: %w", err)
	}
	defer pool.Close()

	if *migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	gw := repository.NewGateway(pool, cfg.Sync.EventBuffer, logger)
	sum, err := seed.NewSeeder(gw, logger).Run(ctx, menu)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %s: config=%t categories=%d products=%d skipped=%d\n",
		menu.Store.Name, sum.ConfigCreated, sum.CategoriesCreated, sum.ProductsCreated, sum.Skipped)
	return nil
}
