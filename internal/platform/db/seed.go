package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gdp/internal/domain/auth"
	"gdp/internal/domain/heladito"
	"gdp/internal/domain/receivables"
	"gdp/internal/platform/config"
	"gdp/internal/platform/store"
)

// Seed creates the configured app users and, on an empty store, the starting Mi Heladito
// workers and the JAMAO receivables. Running it again changes nothing.
func Seed(ctx context.Context, repo store.Repository, users *auth.Service, cfg config.Config) error {
	if err := ensureUser(ctx, users, cfg.SeedAdminUser, cfg.SeedAdminPassword, auth.PermissionAll); err != nil {
		return err
	}
	if err := ensureUser(ctx, users, cfg.SeedHeladitoUser, cfg.SeedHeladitoPass, auth.PermissionHeladitoOnly); err != nil {
		return err
	}

	workers := []heladito.Worker{
		{ID: "mhw-001", Name: "Asistente de Tienda (Medio Tiempo)", WorkerType: heladito.WorkerPartTime, BaseAmount: 6000},
		{ID: "mhw-002", Name: "Persona de Pegar Etiquetas", WorkerType: heladito.WorkerContractor, BaseAmount: 2000},
	}
	if err := seedCollection(ctx, repo, store.HeladitoWorkers, workers, func(w *heladito.Worker) *string { return &w.ID }); err != nil {
		return err
	}

	debtors := []receivables.Debtor{{ID: "debtor-jamao", Name: "JAMAO"}}
	if err := seedCollection(ctx, repo, store.Debtors, debtors, func(d *receivables.Debtor) *string { return &d.ID }); err != nil {
		return err
	}
	open := []receivables.Receivable{
		{ID: "rec-001", DebtorID: "debtor-jamao", Date: "2025-06-05", Amount: 4028.77},
		{ID: "rec-002", DebtorID: "debtor-jamao", Date: "2025-06-10", Amount: 3233.79},
		{ID: "rec-003", DebtorID: "debtor-jamao", Date: "2025-06-14", Amount: 4337.95},
		{ID: "rec-004", DebtorID: "debtor-jamao", Date: "2025-06-20", Amount: 2296.83},
	}
	return seedCollection(ctx, repo, store.Receivables, open, func(r *receivables.Receivable) *string { return &r.ID })
}

func ensureUser(ctx context.Context, users *auth.Service, username, password, permission string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	created, err := users.EnsureUser(ctx, username, password, permission)
	if err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	if created {
		slog.Info("seeded user", "username", username, "permission", permission)
	}
	return nil
}

func seedCollection[T any](ctx context.Context, repo store.Repository, name string, items []T, id func(*T) *string) error {
	existing, err := repo.FetchAll(ctx, name)
	if err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	if len(existing) > 0 {
		return nil
	}
	coll := store.NewCollection(repo, name, id)
	for _, item := range items {
		if _, err := coll.Create(ctx, item); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}
