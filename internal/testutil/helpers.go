// Package testutil holds shared helpers for API and service tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/covernest/ratedesk/internal/api"
	"github.com/covernest/ratedesk/internal/lookup"
	"github.com/covernest/ratedesk/internal/rank"
	"github.com/covernest/ratedesk/internal/rates"
	"github.com/covernest/ratedesk/internal/rto"
	"github.com/covernest/ratedesk/internal/store"
)

// NewTestServer creates a test server with an in-memory store and no rate
// limiting.
func NewTestServer(t *testing.T, adminKey string) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	svc := lookup.New(memStore, rto.NewMaster(nil), rank.New(0, nil))
	server := api.NewServer(svc, memStore, adminKey, 0, 0)
	return server, memStore
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedBatch imports rows into the store and publishes the batch.
func SeedBatch(ctx context.Context, t *testing.T, st store.Store, rows []rates.RawRow) *store.Batch {
	t.Helper()
	batch, err := st.ImportBatch(ctx, "test-seed", rows)
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if err := st.PublishBatch(ctx, batch.ID); err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	return batch
}

// Row builds a raw rate row with sensible defaults, overridden per test.
func Row(overrides map[string]string) rates.RawRow {
	row := rates.RawRow{
		rates.ColCompany:     "Acme General",
		rates.ColFinalPayout: "25",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}
