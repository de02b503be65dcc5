package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/townsquare/internal/town"
)

type ctxKey int

const ctxKeyTown ctxKey = iota

// townMiddleware resolves {townID} and 404s when no such town is running.
func townMiddleware(registry *town.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := registry.Town(chi.URLParam(r, "townID"))
			if !ok {
				writeError(w, http.StatusNotFound, "town not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTown, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func townFrom(r *http.Request) *town.Town {
	return r.Context().Value(ctxKeyTown).(*town.Town)
}
