package db

import (
	"context"
	"testing"
	"time"

	"gdp/internal/domain/auth"
	"gdp/internal/platform/config"
	"gdp/internal/platform/store"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	users := auth.NewService(repo, nil, "secret", time.Hour)
	cfg := config.Config{
		SeedAdminUser:     "admin",
		SeedAdminPassword: "admin-password",
		SeedHeladitoUser:  "heladito",
		SeedHeladitoPass:  "heladito-password",
	}

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, repo, users, cfg); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	counts := map[string]int{store.AppUsers: 2, store.HeladitoWorkers: 2, store.Debtors: 1, store.Receivables: 4}
	for name, want := range counts {
		got, err := repo.FetchAll(ctx, name)
		if err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		}
		if len(got) != want {
			t.Fatalf("%s: got %d records, want %d", name, len(got), want)
		}
	}

	session, err := users.Login(ctx, "heladito", "heladito-password", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.Permission != auth.PermissionHeladitoOnly {
		t.Fatalf("unexpected permission %q", session.User.Permission)
	}
}
