package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covernest/ratedesk/internal/rates"
)

const schema = `
CREATE TABLE IF NOT EXISTS import_batches (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'staged',
	row_count INT NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS rate_rows (
	id BIGSERIAL PRIMARY KEY,
	batch_id UUID NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
	cells JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rate_rows_batch ON rate_rows (batch_id);

CREATE TABLE IF NOT EXISTS query_log (
	id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL DEFAULT now(),
	state TEXT NOT NULL DEFAULT '',
	rto TEXT NOT NULL DEFAULT '',
	vehicle_type TEXT NOT NULL DEFAULT '',
	fuel_type TEXT NOT NULL DEFAULT '',
	policy_type TEXT NOT NULL DEFAULT '',
	result_count INT NOT NULL DEFAULT 0
);
`

// PostgresStore is the PostgreSQL Store implementation. Raw rows are kept
// as jsonb cells, mirroring how the import pipeline delivers them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a postgres-backed store and bootstraps the
// schema.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// CurrentBatch returns the most recently published batch, or nil.
func (p *PostgresStore) CurrentBatch(ctx context.Context) (*Batch, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, source, status, row_count, uploaded_at, published_at
		FROM import_batches
		WHERE status = $1
		ORDER BY published_at DESC
		LIMIT 1`, StatusCompleted)

	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: current batch: %v", ErrUnavailable, err)
	}
	return b, nil
}

// ListBatches returns all batches, newest upload first.
func (p *PostgresStore) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, source, status, row_count, uploaded_at, published_at
		FROM import_batches
		ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list batches: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan batch: %v", ErrUnavailable, err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// GetRecords returns raw rows for one batch, or for all batches when
// batchID is empty.
func (p *PostgresStore) GetRecords(ctx context.Context, batchID string) ([]rates.RawRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if batchID == "" {
		rows, err = p.pool.Query(ctx, `SELECT cells FROM rate_rows`)
	} else {
		rows, err = p.pool.Query(ctx, `SELECT cells FROM rate_rows WHERE batch_id = $1`, batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get records: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []rates.RawRow
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrUnavailable, err)
		}
		var cells rates.RawRow
		if err := json.Unmarshal(blob, &cells); err != nil {
			// Malformed individual rows are skipped, not fatal.
			continue
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// ImportBatch inserts rows as a new staged batch inside one transaction.
func (p *PostgresStore) ImportBatch(ctx context.Context, source string, rowsIn []rates.RawRow) (*Batch, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin import: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	meta := Batch{
		ID:         uuid.NewString(),
		Source:     source,
		Status:     StatusStaged,
		RowCount:   len(rowsIn),
		UploadedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO import_batches (id, source, status, row_count, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		meta.ID, meta.Source, meta.Status, meta.RowCount, meta.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert batch: %v", ErrUnavailable, err)
	}

	for _, row := range rowsIn {
		blob, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO rate_rows (batch_id, cells) VALUES ($1, $2)`, meta.ID, blob); err != nil {
			return nil, fmt.Errorf("%w: insert row: %v", ErrUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit import: %v", ErrUnavailable, err)
	}
	return &meta, nil
}

// PublishBatch marks a staged batch completed.
func (p *PostgresStore) PublishBatch(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE import_batches SET status = $1, published_at = now()
		WHERE id = $2`, StatusCompleted, id)
	if err != nil {
		return fmt.Errorf("%w: publish batch: %v", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return nil
}

// LogQuery records one analytics entry.
func (p *PostgresStore) LogQuery(ctx context.Context, e QueryLogEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO query_log (ts, state, rto, vehicle_type, fuel_type, policy_type, result_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		at, e.State, e.RTO, e.VehicleType, e.FuelType, e.PolicyType, e.ResultCount)
	if err != nil {
		return fmt.Errorf("%w: log query: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	var (
		b         Batch
		published pgtype.Timestamptz
	)
	if err := row.Scan(&b.ID, &b.Source, &b.Status, &b.RowCount, &b.UploadedAt, &published); err != nil {
		return nil, err
	}
	if published.Valid {
		t := published.Time
		b.PublishedAt = &t
	}
	return &b, nil
}
