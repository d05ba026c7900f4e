package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5"
)

// Checks that the configured gateway is reachable and reports which of the
// storefront tables exist and how many rows they hold.
func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	connString, err := cfg.Gateway.ConnectionString()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid gateway settings: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to gateway: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	fmt.Println("\nTables:")
	for _, table := range []string{"store_config", "categories", "products"} {
		var exists bool
		err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup of %s failed: %v\n", table, err)
			os.Exit(1)
		}
		if !exists {
			fmt.Printf("  - %s: missing\n", table)
			continue
		}

		var count int
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&count); err != nil {
			fmt.Fprintf(os.Stderr, "Count of %s failed: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("  - %s: %d rows\n", table, count)
	}
}
