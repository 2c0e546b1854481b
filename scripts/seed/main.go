package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/app"
	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/platform/migrations"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Seeds the standard chart of accounts for SEED_ORGANIZATION_ID (a fresh
// organization id when unset). Re-running skips accounts that already exist.
func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg)

	orgID := uuid.New()
	if raw := os.Getenv("SEED_ORGANIZATION_ID"); raw != "" {
		if orgID, err = shared.ParseID("SEED_ORGANIZATION_ID", raw); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.DBAutoMigrate {
		if err := migrations.Up(cfg.PGDSN, logger); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	ctx := context.Background()
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	repo := accounts.NewRepository(pool)
	fmt.Println("→ Seeding chart of accounts for organization", orgID)
	created, skipped := 0, 0
	for _, acc := range accounts.StandardChart(orgID) {
		if _, err := repo.Create(ctx, acc); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				skipped++
				continue
			}
			log.Fatalf("seed account %s: %v", acc.Code, err)
		}
		created++
	}

	fmt.Printf("✓ Seed complete at %s (%d created, %d existing)\n", time.Now().Format(time.RFC3339), created, skipped)
}
