package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/townsquare/internal/leaderboard"
	"github.com/playperu/townsquare/internal/maps"
	"github.com/playperu/townsquare/internal/town"
)

const (
	msgInvalidUpdate = "Invalid password or update values specified"
	msgInvalidValues = "Invalid values specified"

	defaultLeaderboardLimit = 10
)

type TownCreateRequest struct {
	FriendlyName     string `json:"friendlyName"`
	IsPubliclyListed bool   `json:"isPubliclyListed"`
	MapFile          string `json:"mapFile,omitempty"`
}

type TownUpdateRequest struct {
	FriendlyName     *string `json:"friendlyName,omitempty"`
	IsPubliclyListed *bool   `json:"isPubliclyListed,omitempty"`
}

func handleListTowns(registry *town.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, registry.Towns())
	}
}

func handleCreateTown(logger *slog.Logger, registry *town.Registry, defaultMap string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TownCreateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.FriendlyName == "" {
			writeError(w, http.StatusBadRequest, "FriendlyName must be specified")
			return
		}
		if req.MapFile == "" {
			req.MapFile = defaultMap
		}

		creds, err := registry.CreateTown(r.Context(), req.FriendlyName, req.IsPubliclyListed, req.MapFile)
		if err != nil {
			if isMapError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("creating town", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, creds)
	}
}

func isMapError(err error) bool {
	for _, target := range []error{
		maps.ErrMapNotFound,
		maps.ErrInvalidMapName,
		maps.ErrMalformedMap,
		town.ErrMissingObjectLayer,
		town.ErrMalformedArea,
		town.ErrDuplicateAreaID,
		town.ErrOverlappingAreas,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func handleUpdateTown(registry *town.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TownUpdateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidUpdate)
			return
		}

		ok := registry.UpdateTown(chi.URLParam(r, "townID"), r.Header.Get(headerTownPassword),
			req.FriendlyName, req.IsPubliclyListed)
		if !ok {
			writeError(w, http.StatusBadRequest, msgInvalidUpdate)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteTown(registry *town.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !registry.DeleteTown(chi.URLParam(r, "townID"), r.Header.Get(headerTownPassword)) {
			writeError(w, http.StatusBadRequest, msgInvalidUpdate)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCreateArea activates an area on behalf of a connected player. add
// decodes the body and reports whether the town accepted it.
func handleCreateArea(registry *town.Registry, add func(t *town.Town, r *http.Request) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := registry.Town(chi.URLParam(r, "townID"))
		if !ok {
			writeError(w, http.StatusBadRequest, msgInvalidValues)
			return
		}
		if _, err := playerFromRequest(r, t); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidValues)
			return
		}
		if !add(t, r) {
			writeError(w, http.StatusBadRequest, msgInvalidValues)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addConversationArea(t *town.Town, r *http.Request) bool {
	var m town.ConversationAreaModel
	if err := readJSON(r, &m); err != nil {
		return false
	}
	return t.AddConversationArea(m)
}

func addViewingArea(t *town.Town, r *http.Request) bool {
	var m town.ViewingAreaModel
	if err := readJSON(r, &m); err != nil {
		return false
	}
	return t.AddViewingArea(m)
}

// handleLeaderboard returns the best Simon Says results for one area,
// best streak first. ?limit= caps the list.
func handleLeaderboard(logger *slog.Logger, store leaderboard.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		areaID := chi.URLParam(r, "areaID")
		a, err := townFrom(r).Interactable(areaID)
		if err != nil || a.Kind() != town.KindSimonSaysArea {
			writeError(w, http.StatusNotFound, "area not found")
			return
		}

		limit := defaultLeaderboardLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		entries, err := store.Top(r.Context(), areaID, limit)
		if err != nil {
			logger.Error("loading leaderboard", "area_id", areaID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if entries == nil {
			entries = []town.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
