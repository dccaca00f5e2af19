package store

import (
	"context"
	"errors"
	"time"

	"github.com/covernest/ratedesk/internal/rates"
)

// Sentinel errors surfaced by store implementations.
var (
	// ErrUnavailable wraps retrieval failures (storage/connectivity); the
	// caller may retry the whole query.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrBatchNotFound is returned for operations on unknown batch ids.
	ErrBatchNotFound = errors.New("import batch not found")
)

// Batch statuses. Only completed batches are visible to matching.
const (
	StatusStaged    = "staged"
	StatusCompleted = "completed"
)

// Batch describes one import generation of rate rows.
type Batch struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	RowCount    int        `json:"rowCount"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// QueryLogEntry is one analytics row recorded per payout check.
type QueryLogEntry struct {
	State       string    `json:"state"`
	RTO         string    `json:"rto"`
	VehicleType string    `json:"vehicleType"`
	FuelType    string    `json:"fuelType"`
	PolicyType  string    `json:"policyType"`
	ResultCount int       `json:"resultCount"`
	At          time.Time `json:"at"`
}

// Store persists raw rate rows and import batches. Implementations must be
// safe for concurrent use: matching is unbounded-reader, import/publish is
// single-writer.
type Store interface {
	// CurrentBatch returns the most recently published batch, or nil when
	// no batch has been published yet.
	CurrentBatch(ctx context.Context) (*Batch, error)

	// ListBatches returns all batches, newest first.
	ListBatches(ctx context.Context) ([]Batch, error)

	// GetRecords returns the raw rows of one batch; an empty batchID spans
	// all batches (dropdown population reads do this).
	GetRecords(ctx context.Context, batchID string) ([]rates.RawRow, error)

	// ImportBatch stores rows as a new staged batch and returns it.
	ImportBatch(ctx context.Context, source string, rows []rates.RawRow) (*Batch, error)

	// PublishBatch marks a staged batch completed, superseding the prior
	// published batch.
	PublishBatch(ctx context.Context, id string) error

	// LogQuery records one analytics entry. Failures are warned, never
	// fatal to the query that produced them.
	LogQuery(ctx context.Context, e QueryLogEntry) error

	// Close releases any resources held by the store.
	Close() error
}
