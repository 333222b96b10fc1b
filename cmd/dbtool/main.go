package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"rental-quote-service/internal/adapters/catalog"
	"rental-quote-service/internal/adapters/repositories"
	"rental-quote-service/internal/config"
	"rental-quote-service/internal/platform/db"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dbtool creates the Postgres schema and loads the catalog and branch seeds.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	catalogPath := envOr("CATALOG_PATH", config.DefaultCatalog().Path)
	branchesPath := envOr("BRANCHES_PATH", config.DefaultBranches().Path)
	if err := initAndSeed(ctx, conn, catalogPath, branchesPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, catalogPath, branchesPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	cat, err := catalog.NewFileSource(catalogPath).Load(ctx)
	if err != nil {
		return err
	}
	branches, err := repositories.LoadBranchesJSON(branchesPath)
	if err != nil {
		return err
	}

	log.Println("Seeding database...")
	if err := repositories.SeedCatalog(ctx, conn, cat); err != nil {
		return err
	}
	if err := repositories.SeedBranches(ctx, conn, branches); err != nil {
		return err
	}
	log.Printf("Seeding complete: %d products, %d branches.", len(cat.Products), len(branches))
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
