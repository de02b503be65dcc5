package server

import (
	"context"
	"log/slog"

	"github.com/playperu/townsquare/internal/town"
)

// SeedTown creates a public town called name from mapFile so a fresh server
// has somewhere to go. Idempotent: does nothing if a listed town already
// has that name.
func SeedTown(ctx context.Context, logger *slog.Logger, registry *town.Registry, name, mapFile string) error {
	if name == "" {
		return nil
	}
	for _, t := range registry.Towns() {
		if t.FriendlyName == name {
			return nil
		}
	}

	creds, err := registry.CreateTown(ctx, name, true, mapFile)
	if err != nil {
		return err
	}

	logger.Info("seed town created", "town_id", creds.TownID, "name", name, "map", mapFile)
	return nil
}
