// Package api exposes the HTTP surface: payout checks, dropdown values,
// RTO options, snapshot reads, the SSE watch stream, and the admin batch
// import endpoints.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/covernest/ratedesk/internal/lookup"
	"github.com/covernest/ratedesk/internal/snapshot"
	"github.com/covernest/ratedesk/internal/store"
	"github.com/covernest/ratedesk/internal/telemetry"
)

// Server holds the handler dependencies.
type Server struct {
	svc            *lookup.Service
	store          store.Store
	adminAPIKey    string
	rateLimitPerIP int
	rateLimitAdmin int
}

// NewServer builds the API server. Zero rate limits disable limiting, which
// tests rely on.
func NewServer(svc *lookup.Service, st store.Store, adminKey string, ratePerIP, rateAdmin int) *Server {
	return &Server{
		svc:            svc,
		store:          st,
		adminAPIKey:    adminKey,
		rateLimitPerIP: ratePerIP,
		rateLimitAdmin: rateAdmin,
	}
}

// Router assembles the chi router. The SSE watch route sits outside the
// timeout group since it holds its connection open.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		if s.rateLimitPerIP > 0 {
			r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
		}

		r.Post("/v1/payouts/check", s.handleCheckPayout)
		r.Get("/v1/values/{field}", s.handleValues)
		r.Get("/v1/rtos/{state}", s.handleRTOs)
		r.Get("/v1/snapshot", s.handleSnapshot)

		r.Group(func(r chi.Router) {
			if s.rateLimitAdmin > 0 {
				r.Use(httprate.LimitByIP(s.rateLimitAdmin, time.Minute))
			}
			r.Post("/v1/batches", s.authAdmin(s.handleImportBatch))
			r.Post("/v1/batches/{id}/publish", s.authAdmin(s.handlePublishBatch))
			r.Get("/v1/batches", s.authAdmin(s.handleListBatches))
		})
	})

	r.Get("/v1/snapshot/watch", s.handleWatch)

	return r
}

// RebuildSnapshot loads a batch's rows and swaps the atomic snapshot.
func (s *Server) RebuildSnapshot(ctx context.Context, batchID string) (*snapshot.Snapshot, error) {
	rows, err := s.store.GetRecords(ctx, batchID)
	if err != nil {
		return nil, err
	}
	snap := snapshot.Build(batchID, rows)
	snapshot.Update(snap)
	telemetry.SnapshotRecords.Set(float64(len(snap.Records)))
	return snap, nil
}

// ---- middleware & helpers ----

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
