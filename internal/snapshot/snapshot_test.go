package snapshot

import (
	"sync"
	"testing"

	"github.com/covernest/ratedesk/internal/rates"
)

func sampleRows() []rates.RawRow {
	return []rates.RawRow{
		{rates.ColCompany: "Acme General", rates.ColFinalPayout: "0.25"},
		{rates.ColCompany: "Zenith Insurance", rates.ColFinalPayout: "30"},
		{rates.ColCompany: "", rates.ColFinalPayout: "10"}, // skipped
	}
}

func TestBuildParsesAndSkips(t *testing.T) {
	snap := Build("batch-1", sampleRows())

	if len(snap.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(snap.Records))
	}
	if snap.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", snap.Skipped)
	}
	if snap.BatchID != "batch-1" {
		t.Errorf("BatchID = %q, want batch-1", snap.BatchID)
	}
	if snap.Records[0].FinalPayout != 25 {
		t.Errorf("fraction payout = %v, want 25", snap.Records[0].FinalPayout)
	}
	if snap.ETag == "" {
		t.Error("ETag must be set")
	}
}

func TestBuildETagDeterminism(t *testing.T) {
	a := Build("batch-1", sampleRows())
	b := Build("batch-1", sampleRows())
	if a.ETag != b.ETag {
		t.Errorf("same input must produce the same ETag: %q vs %q", a.ETag, b.ETag)
	}

	c := Build("batch-2", sampleRows())
	if a.ETag == c.ETag {
		t.Error("different batch ids must produce different ETags")
	}

	rows := sampleRows()
	rows[0][rates.ColFinalPayout] = "0.26"
	d := Build("batch-1", rows)
	if a.ETag == d.ETag {
		t.Error("different rows must produce different ETags")
	}
}

func TestUpdateAndLoad(t *testing.T) {
	snap := Build("batch-load", sampleRows())
	Update(snap)

	got := Load()
	if got.BatchID != "batch-load" {
		t.Errorf("Load().BatchID = %q, want batch-load", got.BatchID)
	}
	if len(got.Records) != 2 {
		t.Errorf("Load() records = %d, want 2", len(got.Records))
	}
}

func TestSubscribeReceivesPublishes(t *testing.T) {
	ch, unsub := Subscribe()
	defer unsub()

	snap := Build("batch-notify", sampleRows())
	Update(snap)

	select {
	case etag := <-ch:
		if etag != snap.ETag {
			t.Errorf("received etag %q, want %q", etag, snap.ETag)
		}
	default:
		t.Fatal("expected a notification after Update")
	}
}

func TestConcurrentLoadDuringUpdate(t *testing.T) {
	first := Build("batch-a", sampleRows())
	second := Build("batch-b", sampleRows())
	Update(first)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := Load()
				// A loaded snapshot is internally consistent even while
				// the publisher swaps underneath.
				if snap.BatchID == "batch-a" && snap.ETag != first.ETag {
					t.Error("snapshot mixed fields from two batches")
					return
				}
				if snap.BatchID == "batch-b" && snap.ETag != second.ETag {
					t.Error("snapshot mixed fields from two batches")
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			Update(second)
		} else {
			Update(first)
		}
	}
	close(stop)
	wg.Wait()
}
