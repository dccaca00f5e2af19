package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/covernest/ratedesk/internal/rates"
	"github.com/covernest/ratedesk/internal/rto"
	"github.com/covernest/ratedesk/internal/snapshot"
	"github.com/covernest/ratedesk/internal/store"
	"github.com/covernest/ratedesk/internal/telemetry"
)

// handleCheckPayout runs one payout lookup. Validation failures and empty
// match sets are ordinary 200 outcomes with status "error"/"no_data"; only
// malformed requests get a 4xx.
func (s *Server) handleCheckPayout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit

	var q rates.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		if err.Error() == "http: request body too large" {
			RequestTooLargeError(w, r, "Request body too large")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON payout query")
		return
	}

	res := s.svc.CheckPayout(r.Context(), q)
	telemetry.PayoutChecks.WithLabelValues(res.Status).Inc()
	writeJSON(w, http.StatusOK, res)
}

type valuesResponse struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// handleValues lists the distinct dropdown values for a field, narrowed by
// filter query parameters named like the payout-check fields.
func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	filter := queryFromParams(r.URL.Query())

	values, err := s.svc.Values(r.Context(), field, filter)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			UnavailableError(w, r, "record store unavailable")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidField, fmt.Sprintf("unknown field %q", field))
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, valuesResponse{Field: field, Values: values})
}

type rtosResponse struct {
	State    string       `json:"state"`
	HasCodes bool         `json:"has_codes"`
	Options  []rto.Option `json:"options"`
}

// handleRTOs lists the RTO dropdown options for a state. States without
// configured codes return has_codes false and an empty list.
func (s *Server) handleRTOs(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	opts := s.svc.RTOOptions(state)
	if opts == nil {
		opts = []rto.Option{}
	}
	writeJSON(w, http.StatusOK, rtosResponse{
		State:    state,
		HasCodes: len(opts) > 0,
		Options:  opts,
	})
}

// handleSnapshot serves the current snapshot metadata with ETag support.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", snap.ETag)
	_ = json.NewEncoder(w).Encode(struct {
		*snapshot.Snapshot
		Records int `json:"records"`
	}{snap, len(snap.Records)})
}

// handleWatch streams snapshot publishes over SSE. Each event carries the
// new ETag; a heartbeat comment keeps idle connections alive.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, unsub := snapshot.Subscribe()
	defer unsub()
	telemetry.SSEClients.Inc()
	defer telemetry.SSEClients.Dec()

	// Initial event so clients learn the current ETag immediately.
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", snapshot.Load().ETag)
	flusher.Flush()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case etag, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", etag)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// ---- admin batch handlers ----

type importRequest struct {
	Source string         `json:"source"`
	Rows   []rates.RawRow `json:"rows"`
}

type publishResponse struct {
	OK      bool   `json:"ok"`
	ETag    string `json:"etag"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
}

// handleImportBatch stages a new batch of raw rows. Staging never affects
// live queries; the batch goes live on publish.
func (s *Server) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<20) // 64 MB limit

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			RequestTooLargeError(w, r, "Request body too large")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON: expected fields 'source' and 'rows'")
		return
	}
	if len(req.Rows) == 0 {
		BadRequestError(w, r, ErrCodeMissingField, "rows must not be empty")
		return
	}

	batch, err := s.store.ImportBatch(r.Context(), req.Source, req.Rows)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			UnavailableError(w, r, "record store unavailable")
			return
		}
		InternalError(w, r, "import failed")
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

// handlePublishBatch marks a staged batch completed and atomically swaps the
// in-memory snapshot to it.
func (s *Server) handlePublishBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.PublishBatch(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrBatchNotFound):
			NotFoundError(w, r, fmt.Sprintf("batch %s not found", id))
		case errors.Is(err, store.ErrUnavailable):
			UnavailableError(w, r, "record store unavailable")
		default:
			InternalError(w, r, "publish failed")
		}
		return
	}

	snap, err := s.RebuildSnapshot(r.Context(), id)
	if err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{
		OK:      true,
		ETag:    snap.ETag,
		Records: len(snap.Records),
		Skipped: snap.Skipped,
	})
}

// handleListBatches returns all import batches, newest first.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.store.ListBatches(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			UnavailableError(w, r, "record store unavailable")
			return
		}
		InternalError(w, r, "list failed")
		return
	}
	if batches == nil {
		batches = []store.Batch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

// queryFromParams maps URL query parameters onto the filter query. Parameter
// names mirror the payout-check JSON fields.
func queryFromParams(params url.Values) rates.Query {
	get := func(key string) string { return strings.TrimSpace(params.Get(key)) }
	return rates.Query{
		State:           get("state"),
		RTOCode:         get("rto_code"),
		VehicleCategory: get("vehicle_category"),
		VehicleType:     get("vehicle_type"),
		FuelType:        get("fuel_type"),
		PolicyType:      get("policy_type"),
		BusinessType:    get("business_type"),
		VehicleAge:      get("vehicle_age"),
		CCSlab:          get("cc_slab"),
		GVWSlab:         get("gvw_slab"),
		GVWValue:        get("gvw_value"),
		WattSlab:        get("watt_slab"),
		Seating:         get("seating_capacity"),
		NCBSlab:         get("ncb_slab"),
		CPACover:        get("cpa_cover"),
		ZeroDep:         get("zero_depreciation"),
		Trailer:         get("trailer"),
		Make:            get("make"),
		Model:           get("model"),
	}
}
