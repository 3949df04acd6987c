package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"health-companion-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	_ = godotenv.Load("../../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	st, err := Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(st.Close)

	ddl, err := os.ReadFile("../../../db/migrations/001_init.sql")
	if err != nil {
		t.Fatalf("migration: %v", err)
	}
	if err := st.Migrate(ctx, string(ddl)); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storetest.Run(t, st)
}
