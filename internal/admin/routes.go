// Package admin exposes recorded submissions to site operators.
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nermi/website/internal/submissions"
)

// RegisterRoutes mounts the admin API under /api/admin. Every route requires
// token as a bearer token or a token query parameter. Nothing is mounted when
// token is empty. feed may be nil.
func RegisterRoutes(r chi.Router, store *submissions.Store, feed *Feed, token string) {
	if token == "" {
		return
	}
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(RequireToken(token))
		if store != nil {
			r.Get("/submissions", handleList(store))
			r.Get("/submissions/{id}", handleGetByID(store))
		}
		if feed != nil {
			r.Get("/feed", feed.ServeHTTP)
		}
	})
}

// RequireToken rejects requests that do not carry token.
func RequireToken(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("token")
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				got = strings.TrimPrefix(h, "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// parseLimit clamps a limit query value to 1..maxListLimit.
func parseLimit(v string) int {
	n, err := strconv.Atoi(v)
	switch {
	case err != nil:
		return defaultListLimit
	case n < 1:
		return 1
	case n > maxListLimit:
		return maxListLimit
	}
	return n
}

func handleList(store *submissions.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := submissions.ListFilter{Limit: defaultListLimit}

		if v := q.Get("status"); v != "" {
			filter.Status = submissions.Status(v)
		}
		if v := q.Get("since"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.Since = t
			}
		}
		if v := q.Get("limit"); v != "" {
			filter.Limit = parseLimit(v)
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Offset = n
			}
		}

		subs, err := store.List(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if subs == nil {
			subs = []submissions.Submission{}
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

func handleGetByID(store *submissions.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, submissions.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
