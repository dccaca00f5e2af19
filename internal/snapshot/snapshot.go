// Package snapshot holds the atomically-published view of the current
// import batch. A publish swaps the whole snapshot; in-flight queries keep
// reading the snapshot they loaded, never a half-updated one.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/covernest/ratedesk/internal/rates"
)

// Snapshot is one immutable record set for a single import batch.
type Snapshot struct {
	BatchID  string             `json:"batchId"`
	ETag     string             `json:"etag"`
	Records  []rates.RateRecord `json:"-"`
	Skipped  int                `json:"skippedRows"`
	LoadedAt time.Time          `json:"loadedAt"`
}

var current atomic.Pointer[Snapshot]

// Load returns the current snapshot. Callers must read it exactly once per
// query so a query never sees records from two batches.
func Load() *Snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	return &Snapshot{LoadedAt: time.Now().UTC()}
}

// Update swaps in a new snapshot and notifies watchers.
func Update(s *Snapshot) {
	current.Store(s)
	publishUpdate(s.ETag)
}

// Build parses a batch's raw rows into rate records and computes a content
// ETag. Malformed rows are skipped with a warning; availability over
// completeness for rare bad rows.
func Build(batchID string, rows []rates.RawRow) *Snapshot {
	records := make([]rates.RateRecord, 0, len(rows))
	skipped := 0
	digest := xxhash.New()
	for i, row := range rows {
		rec, err := rates.ParseRecord(batchID, row)
		if err != nil {
			skipped++
			log.Warn().Err(err).Int("row", i).Str("batch", batchID).Msg("skipping malformed rate row")
			continue
		}
		records = append(records, *rec)
		if blob, err := json.Marshal(row); err == nil {
			_, _ = digest.Write(blob)
		}
	}
	_, _ = digest.WriteString(batchID)

	return &Snapshot{
		BatchID:  batchID,
		ETag:     fmt.Sprintf(`W/"%016x"`, digest.Sum64()),
		Records:  records,
		Skipped:  skipped,
		LoadedAt: time.Now().UTC(),
	}
}
