package town

import (
	"cmp"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

// MapSource resolves a map name to its description.
type MapSource interface {
	Load(name string) (*Map, error)
}

type TownCredentials struct {
	TownID             string `json:"townID"`
	TownUpdatePassword string `json:"townUpdatePassword"`
}

type TownSummary struct {
	TownID           string `json:"townID"`
	FriendlyName     string `json:"friendlyName"`
	IsPubliclyListed bool   `json:"isPubliclyListed"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaximumOccupancy int    `json:"maximumOccupancy"`
}

// Registry is the directory of live towns.
type Registry struct {
	broadcaster Broadcaster
	maps        MapSource
	svc         Services
	logger      *slog.Logger

	mu    sync.RWMutex
	towns map[string]*Town
}

func NewRegistry(broadcaster Broadcaster, maps MapSource, svc Services) *Registry {
	logger := svc.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		broadcaster: broadcaster,
		maps:        maps,
		svc:         svc,
		logger:      logger,
		towns:       make(map[string]*Town),
	}
}

// CreateTown allocates a town, builds its areas from mapFile when one is
// named, and returns the credentials needed to administer it later.
func (r *Registry) CreateTown(ctx context.Context, friendlyName string, isPubliclyListed bool, mapFile string) (TownCredentials, error) {
	townID := ulid.Make().String()
	password, err := newPassword()
	if err != nil {
		return TownCredentials{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return TownCredentials{}, fmt.Errorf("hashing town password: %w", err)
	}

	t := NewTown(townID, friendlyName, isPubliclyListed, hash, r.broadcaster.Room(townID), r.svc)
	if mapFile != "" {
		m, err := r.maps.Load(mapFile)
		if err != nil {
			return TownCredentials{}, fmt.Errorf("loading map %q: %w", mapFile, err)
		}
		if err := t.InitializeFromMap(m); err != nil {
			return TownCredentials{}, fmt.Errorf("initializing town from %q: %w", mapFile, err)
		}
		if err := t.LoadLeaderboards(ctx); err != nil {
			return TownCredentials{}, err
		}
	}

	r.mu.Lock()
	r.towns[townID] = t
	r.mu.Unlock()

	r.logger.Info("town created", "town_id", townID, "map", mapFile, "public", isPubliclyListed)
	return TownCredentials{TownID: townID, TownUpdatePassword: password}, nil
}

func (r *Registry) Town(townID string) (*Town, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.towns[townID]
	return t, ok
}

// Towns lists the publicly listed towns, oldest first.
func (r *Registry) Towns() []TownSummary {
	r.mu.RLock()
	towns := make([]*Town, 0, len(r.towns))
	for _, t := range r.towns {
		towns = append(towns, t)
	}
	r.mu.RUnlock()

	out := make([]TownSummary, 0, len(towns))
	for _, t := range towns {
		if !t.IsPubliclyListed() {
			continue
		}
		out = append(out, TownSummary{
			TownID:           t.TownID(),
			FriendlyName:     t.FriendlyName(),
			IsPubliclyListed: true,
			CurrentOccupancy: t.Occupancy(),
			MaximumOccupancy: t.Capacity(),
		})
	}
	slices.SortFunc(out, func(a, b TownSummary) int { return cmp.Compare(a.TownID, b.TownID) })
	return out
}

// UpdateTown changes a town's settings. It returns false, changing nothing,
// unless the town exists, the password matches and at least one setting is
// given. A friendly name, when given, must not be empty.
func (r *Registry) UpdateTown(townID, password string, friendlyName *string, isPubliclyListed *bool) bool {
	t, ok := r.Town(townID)
	if !ok || !t.CheckPassword(password) {
		return false
	}
	if friendlyName != nil && *friendlyName == "" {
		return false
	}
	if friendlyName == nil && isPubliclyListed == nil {
		return false
	}

	if friendlyName != nil {
		t.SetFriendlyName(*friendlyName)
	}
	if isPubliclyListed != nil {
		t.SetPubliclyListed(*isPubliclyListed)
	}
	return true
}

// DeleteTown disconnects everyone in the town and forgets it.
func (r *Registry) DeleteTown(townID, password string) bool {
	t, ok := r.Town(townID)
	if !ok || !t.CheckPassword(password) {
		return false
	}

	r.mu.Lock()
	delete(r.towns, townID)
	r.mu.Unlock()

	t.DisconnectAllPlayers()
	r.logger.Info("town deleted", "town_id", townID)
	return true
}

// Close shuts every town down.
func (r *Registry) Close() {
	r.mu.Lock()
	towns := r.towns
	r.towns = make(map[string]*Town)
	r.mu.Unlock()

	for _, t := range towns {
		t.DisconnectAllPlayers()
	}
}

func newPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating town password: %w", err)
	}
	return hex.EncodeToString(b), nil
}
