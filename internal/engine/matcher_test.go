package engine

import (
	"testing"
	"time"

	"github.com/covernest/ratedesk/internal/rates"
)

var testNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func record(t *testing.T, overrides map[string]string) *rates.RateRecord {
	t.Helper()
	row := rates.RawRow{
		rates.ColCompany:     "Acme General",
		rates.ColFinalPayout: "25",
	}
	for k, v := range overrides {
		row[k] = v
	}
	rec, err := rates.ParseRecord("b1", row)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	return rec
}

func TestMatchesStateAndRTO(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]string
		q    rates.Query
		want bool
	}{
		{
			name: "display name resolves to stored code",
			rec:  map[string]string{rates.ColState: "TN,KL"},
			q:    rates.Query{State: "Tamil Nadu"},
			want: true,
		},
		{
			name: "state not in list",
			rec:  map[string]string{rates.ColState: "TN,KL"},
			q:    rates.Query{State: "Karnataka"},
			want: false,
		},
		{
			name: "Others state selects wildcard records",
			rec:  map[string]string{},
			q:    rates.Query{State: "Others"},
			want: true,
		},
		{
			name: "Others state selects exclusion records",
			rec:  map[string]string{rates.ColState: "Except TN"},
			q:    rates.Query{State: "Others"},
			want: true,
		},
		{
			name: "Others state never selects explicit states",
			rec:  map[string]string{rates.ColState: "TN,KL"},
			q:    rates.Query{State: "Others"},
			want: false,
		},
		{
			name: "rto inclusion member",
			rec:  map[string]string{rates.ColRTOCode: "TN-01, TN-02"},
			q:    rates.Query{RTOCode: "02"},
			want: true,
		},
		{
			name: "rto inclusion non-member",
			rec:  map[string]string{rates.ColRTOCode: "TN-01, TN-02"},
			q:    rates.Query{RTOCode: "07"},
			want: false,
		},
		{
			name: "rto exclusion",
			rec:  map[string]string{rates.ColRTOCode: "Except 01"},
			q:    rates.Query{RTOCode: "01"},
			want: false,
		},
		{
			name: "Others rto matches pure exclusion",
			rec:  map[string]string{rates.ColRTOCode: "Except 01"},
			q:    rates.Query{RTOCode: "Others"},
			want: true,
		},
		{
			name: "Others rto skips inclusion lists",
			rec:  map[string]string{rates.ColRTOCode: "01,02"},
			q:    rates.Query{RTOCode: "Others"},
			want: false,
		},
		{
			name: "N/A rto applies no filter",
			rec:  map[string]string{rates.ColRTOCode: "01,02"},
			q:    rates.Query{RTOCode: "N/A"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(t, tt.rec)
			if got := Matches(rec, &tt.q, testNow); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesBusinessType(t *testing.T) {
	blank := record(t, nil)
	explicitNew := record(t, map[string]string{rates.ColBusinessType: "New"})
	renewal := record(t, map[string]string{rates.ColBusinessType: "Renewal"})

	tests := []struct {
		name     string
		rec      *rates.RateRecord
		business string
		want     bool
	}{
		{"blank cell matches Old", blank, "Old", true},
		{"blank cell matches Renewal spelling", blank, "Renewal", true},
		{"blank cell rejects New", blank, "New", false},
		{"explicit New matches New", explicitNew, "New", true},
		{"explicit New rejects Old", explicitNew, "Old", false},
		{"Renewal cell matches Old query", renewal, "Old", true},
		{"no business filter matches all", explicitNew, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rates.Query{BusinessType: tt.business}
			if got := Matches(tt.rec, &q, testNow); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesVehicleTypeAliases(t *testing.T) {
	rec := record(t, map[string]string{rates.ColVehicleType: "Bacho Loader"})
	q := rates.Query{VehicleType: "Backho Loader"}
	if !Matches(rec, &q, testNow) {
		t.Error("alias spellings of one vehicle type should match")
	}

	excl := record(t, map[string]string{rates.ColVehicleType: "Except Bacho Loader"})
	if Matches(excl, &q, testNow) {
		t.Error("excluding one alias spelling excludes the physical type")
	}
}

func TestMatchesSeating(t *testing.T) {
	rec := record(t, map[string]string{
		rates.ColVehicleCategory: "PCV",
		rates.ColSeating:         "N/A",
	})

	pcvBus := rates.Query{VehicleCategory: "PCV", VehicleType: "Bus", Seating: "32"}
	if !Matches(rec, &pcvBus, testNow) {
		t.Error("N/A seating is open for PCV non-Auto queries")
	}

	pcvAuto := rates.Query{VehicleCategory: "PCV", VehicleType: "Auto", Seating: "6"}
	if Matches(rec, &pcvAuto, testNow) {
		t.Error("Auto queries use strict seating even within PCV")
	}

	gcvRec := record(t, map[string]string{rates.ColSeating: "N/A"})
	gcv := rates.Query{VehicleCategory: "GCV", Seating: "6"}
	if Matches(gcvRec, &gcv, testNow) {
		t.Error("non-PCV queries use strict seating")
	}
}

func TestMatchesVehicleAge(t *testing.T) {
	rec := record(t, map[string]string{
		rates.ColAgeMin: "3",
		rates.ColAgeMax: "7",
	})

	tests := []struct {
		age  string
		want bool
	}{
		{"3", true},
		{"7", true},
		{"5", true},
		{"2", false},
		{"8", false},
		{"", true},
		{"above 10", true}, // non-numeric applies no filter
	}
	for _, tt := range tests {
		q := rates.Query{VehicleAge: tt.age}
		if got := Matches(rec, &q, testNow); got != tt.want {
			t.Errorf("age %q: Matches = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestMatchesGVWSlab(t *testing.T) {
	rec := record(t, map[string]string{
		rates.ColGVWMin: "25",
		rates.ColGVWMax: "40",
	})
	unbounded := record(t, nil)

	tests := []struct {
		name string
		rec  *rates.RateRecord
		slab string
		want bool
	}{
		{"overlapping slab", rec, "30|50", true},
		{"touching slab overlaps", rec, "40|MAX", true},
		{"disjoint slab", rec, "45|50", false},
		{"open upper slab", rec, "10|MAX", true},
		{"record without bounds never matches a slab", unbounded, "25|40", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rates.Query{GVWSlab: tt.slab}
			if got := Matches(tt.rec, &q, testNow); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesGVWPoint(t *testing.T) {
	bounded := record(t, map[string]string{
		rates.ColGVWMin: "12",
		rates.ColGVWMax: "20",
	})
	unbounded := record(t, nil)

	gcv4 := rates.Query{VehicleCategory: "GCV", VehicleType: "4 Wheeler Goods", GVWValue: "15"}
	if !Matches(bounded, &gcv4, testNow) {
		t.Error("bounded record should contain the point")
	}

	gcv4Out := rates.Query{VehicleCategory: "GCV", VehicleType: "4 Wheeler Goods", GVWValue: "25"}
	if Matches(bounded, &gcv4Out, testNow) {
		t.Error("point outside the record range must not match")
	}

	gcv4Unbounded := rates.Query{VehicleCategory: "GCV", VehicleType: "4 Wheeler Goods", GVWValue: "15"}
	if Matches(unbounded, &gcv4Unbounded, testNow) {
		t.Error("GCV 4-wheelers require a full GVW range on the record")
	}

	other := rates.Query{VehicleCategory: "Misc", GVWValue: "15"}
	if !Matches(unbounded, &other, testNow) {
		t.Error("records without GVW bounds match point queries outside GCV 4-wheeler")
	}
}

func TestMatchesValidityWindow(t *testing.T) {
	rec := record(t, map[string]string{
		rates.ColDateFrom: "2026-01-01",
		rates.ColDateTill: "2026-06-30",
	})
	q := rates.Query{}
	if Matches(rec, &q, testNow) {
		t.Error("expired record must not match")
	}
	inWindow := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !Matches(rec, &q, inWindow) {
		t.Error("record should match inside its validity window")
	}
}

func TestMatchesWholeTokenFilters(t *testing.T) {
	rec := record(t, map[string]string{
		rates.ColFuelType:   "Petrol,Diesel",
		rates.ColPolicyType: "Comprehensive",
		rates.ColMake:       "All Make",
	})

	match := rates.Query{FuelType: "diesel", PolicyType: "Comprehensive", Make: "Tata"}
	if !Matches(rec, &match, testNow) {
		t.Error("whole-token fuel member with wildcard make should match")
	}

	partial := rates.Query{FuelType: "Die"}
	if Matches(rec, &partial, testNow) {
		t.Error("substring fuel values must not match")
	}
}
