package rank

import (
	"testing"
)

func TestRankBestPerCompany(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "Acme", Payout: 20},
		{Company: "acme", Payout: 35}, // same insurer, folded
		{Company: "Zenith", Payout: 30},
	}, false)

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Company != "acme" || entries[0].Payout != 35 || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want acme 35 rank 1", entries[0])
	}
	if entries[1].Company != "Zenith" || entries[1].Rank != 2 {
		t.Errorf("second entry = %+v, want Zenith rank 2", entries[1])
	}
}

func TestRankTieBreakCompanyAscending(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "zeta", Payout: 30},
		{Company: "Alpha", Payout: 30},
		{Company: "beta", Payout: 30},
	}, false)

	got := []string{entries[0].Company, entries[1].Company, entries[2].Company}
	want := []string{"Alpha", "beta", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order = %v, want %v (case-insensitive ascending)", got, want)
		}
	}
}

func TestRankTopNDistinctCompanies(t *testing.T) {
	r := New(5, nil)
	var matches []Match
	// Seven companies, one of which has two condition groups.
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		matches = append(matches, Match{Company: name, Payout: float64(70 - i)})
	}
	matches = append(matches, Match{Company: "A", Conditions: "Commission on OD", Payout: 65})

	entries := r.Rank(matches, false)
	seen := map[string]struct{}{}
	for _, e := range entries {
		seen[e.Company] = struct{}{}
	}
	if len(seen) != 5 {
		t.Errorf("distinct companies = %d, want 5", len(seen))
	}
	for _, e := range entries {
		if e.Company == "F" || e.Company == "G" {
			t.Errorf("company %s should be cut by top-5", e.Company)
		}
	}
}

func TestRankGeneralGroupCollapse(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "Acme", Conditions: "No", Payout: 20},
		{Company: "Acme", Conditions: "n/a", Payout: 25},
		{Company: "Acme", Conditions: "", Payout: 22},
	}, false)

	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (one General group)", len(entries))
	}
	if entries[0].Payout != 25 || entries[0].Conditions != "" {
		t.Errorf("entry = %+v, want best payout 25 with empty conditions", entries[0])
	}
}

func TestRankPanIndiaODTPPair(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "New India", Conditions: "Commission on OD", Payout: 18},
		{Company: "New India", Conditions: "Commission on TP", Payout: 22},
		{Company: "Acme", Payout: 30},
	}, false)

	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3 (Acme + OD/TP pair)", len(entries))
	}
	if entries[0].Company != "Acme" || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want Acme rank 1", entries[0])
	}
	// The pair shares one rank, higher payout first.
	if entries[1].Rank != 2 || entries[2].Rank != 2 {
		t.Errorf("pair ranks = %d,%d, want both 2", entries[1].Rank, entries[2].Rank)
	}
	if entries[1].Payout != 22 || entries[2].Payout != 18 {
		t.Errorf("pair order = %v,%v, want 22 then 18", entries[1].Payout, entries[2].Payout)
	}
}

func TestRankODTakesPrecedenceOverTP(t *testing.T) {
	r := New(0, nil)

	// A group naming both commissions counts as the OD row only; it must not
	// also fill the TP slot and appear twice.
	entries := r.Rank([]Match{
		{Company: "New India", Conditions: "Commission on OD and Commission on TP", Payout: 20},
		{Company: "New India", Conditions: "Commission on TP", Payout: 15},
	}, false)

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Payout != 20 || entries[1].Payout != 15 {
		t.Errorf("pair payouts = %v,%v, want 20 then 15", entries[0].Payout, entries[1].Payout)
	}
	if entries[0].Conditions == entries[1].Conditions {
		t.Errorf("pair repeats one row: %+v", entries)
	}

	// With no separate TP row there is no pair, just the single best entry.
	entries = r.Rank([]Match{
		{Company: "New India", Conditions: "Commission on OD and Commission on TP", Payout: 20},
	}, false)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
}

func TestRankNonPanIndiaKeepsSingleEntry(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "Acme", Conditions: "Commission on OD", Payout: 18},
		{Company: "Acme", Conditions: "Commission on TP", Payout: 22},
	}, false)

	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Payout != 22 {
		t.Errorf("entry payout = %v, want the best row 22", entries[0].Payout)
	}
}

func TestRankPCVSeatingGroups(t *testing.T) {
	r := New(0, nil)
	entries := r.Rank([]Match{
		{Company: "Acme", SeatingLabel: "32", Payout: 20},
		{Company: "Acme", SeatingLabel: "36", Payout: 24},
	}, true)

	// Two seating groups for one insurer, but the ranked list keeps the
	// company's best row only.
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Conditions != "36 seating" || entries[0].Payout != 24 {
		t.Errorf("entry = %+v, want '36 seating' at 24", entries[0])
	}
}

func TestRankEmptyMatches(t *testing.T) {
	if entries := New(0, nil).Rank(nil, false); len(entries) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", entries)
	}
}
