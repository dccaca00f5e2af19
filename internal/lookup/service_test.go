package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/covernest/ratedesk/internal/rank"
	"github.com/covernest/ratedesk/internal/rates"
	"github.com/covernest/ratedesk/internal/rto"
	"github.com/covernest/ratedesk/internal/snapshot"
	"github.com/covernest/ratedesk/internal/store"
)

var fixedNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, rows []rates.RawRow) (*Service, *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	master := rto.NewMaster(map[string]map[string]string{
		"TN": {"01": "Chennai Central", "02": "Chennai North"},
	})
	svc := New(st, master, rank.New(0, nil)).WithClock(func() time.Time { return fixedNow })

	if len(rows) > 0 {
		batch, err := st.ImportBatch(ctx, "test", rows)
		if err != nil {
			t.Fatalf("ImportBatch: %v", err)
		}
		if err := st.PublishBatch(ctx, batch.ID); err != nil {
			t.Fatalf("PublishBatch: %v", err)
		}
		snapshot.Update(snapshot.Build(batch.ID, rows))
	} else {
		snapshot.Update(snapshot.Build("", nil))
	}
	return svc, st
}

func testRows() []rates.RawRow {
	return []rates.RawRow{
		{
			rates.ColCompany:     "Acme General",
			rates.ColState:       "TN,KL",
			rates.ColFuelType:    "Diesel",
			rates.ColFinalPayout: "0.25",
		},
		{
			rates.ColCompany:     "Zenith Insurance",
			rates.ColState:       "TN",
			rates.ColFuelType:    "Petrol,Diesel",
			rates.ColFinalPayout: "30",
		},
		{
			rates.ColCompany:     "Karnataka Only",
			rates.ColState:       "KA",
			rates.ColFinalPayout: "40",
		},
	}
}

func TestCheckPayoutSuccess(t *testing.T) {
	svc, st := newTestService(t, testRows())

	res := svc.CheckPayout(context.Background(), rates.Query{
		State:    "Tamil Nadu",
		FuelType: "Diesel",
	})

	if res.Status != StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", res.Status, res.Message)
	}
	if res.TotalCompanies != 2 {
		t.Errorf("TotalCompanies = %d, want 2", res.TotalCompanies)
	}
	if len(res.Payouts) != 2 {
		t.Fatalf("len(Payouts) = %d, want 2", len(res.Payouts))
	}
	// Zenith 30 beats the scaled Acme fraction 25.
	if res.Payouts[0].Company != "Zenith Insurance" || res.Payouts[0].Payout != 30 {
		t.Errorf("top entry = %+v, want Zenith at 30", res.Payouts[0])
	}
	if res.Payouts[1].Payout != 25 {
		t.Errorf("second entry payout = %v, want 25 (fraction scaled)", res.Payouts[1].Payout)
	}

	log := st.QueryLog()
	if len(log) != 1 || log[0].ResultCount != 2 {
		t.Errorf("query log = %+v, want one entry with 2 results", log)
	}
}

func TestCheckPayoutNoData(t *testing.T) {
	svc, _ := newTestService(t, testRows())

	res := svc.CheckPayout(context.Background(), rates.Query{State: "Maharashtra"})
	if res.Status != StatusNoData {
		t.Fatalf("Status = %q, want no_data", res.Status)
	}
	if res.Message == "" {
		t.Error("no_data should carry a user-facing message")
	}
	if len(res.Payouts) != 0 {
		t.Errorf("Payouts = %v, want empty", res.Payouts)
	}
}

func TestCheckPayoutValidationFailure(t *testing.T) {
	svc, st := newTestService(t, testRows())

	res := svc.CheckPayout(context.Background(), rates.Query{
		BusinessType: "New",
		VehicleAge:   "4",
	})
	if res.Status != StatusError {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if res.Message != "Business Type cannot be New when Vehicle Age is not 1." {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Field != "business_type" {
		t.Errorf("Field = %q, want business_type", res.Field)
	}
	// Rejected queries never reach matching or the query log.
	if len(st.QueryLog()) != 0 {
		t.Error("validation failures must not be logged as queries")
	}
}

func TestCheckPayoutNormalizesRTO(t *testing.T) {
	rows := []rates.RawRow{{
		rates.ColCompany:     "Acme General",
		rates.ColRTOCode:     "TN-01",
		rates.ColFinalPayout: "20",
	}}
	svc, _ := newTestService(t, rows)

	res := svc.CheckPayout(context.Background(), rates.Query{RTOCode: "tn 1"})
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %q (%s), want success", res.Status, res.Message)
	}
	if res.RTOCode != "01" {
		t.Errorf("RTOCode = %q, want normalized 01", res.RTOCode)
	}
}

func TestValuesDistinctAndFiltered(t *testing.T) {
	rows := []rates.RawRow{
		{
			rates.ColCompany:     "Acme General",
			rates.ColVehicleType: "Bacho Loader",
			rates.ColFuelType:    "Diesel",
			rates.ColFinalPayout: "20",
		},
		{
			rates.ColCompany:     "Zenith Insurance",
			rates.ColVehicleType: "Backho Loader, Tractor",
			rates.ColFuelType:    "Petrol",
			rates.ColFinalPayout: "25",
		},
	}
	svc, _ := newTestService(t, rows)
	ctx := context.Background()

	types, err := svc.Values(ctx, "vehicle_type", rates.Query{})
	if err != nil {
		t.Fatal(err)
	}
	// Alias spellings collapse to one canonical label.
	want := []string{"Backho Loader", "Tractor"}
	if len(types) != len(want) {
		t.Fatalf("vehicle types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("vehicle types = %v, want %v", types, want)
			break
		}
	}

	fuels, err := svc.Values(ctx, "fuel_type", rates.Query{VehicleType: "Tractor"})
	if err != nil {
		t.Fatal(err)
	}
	// Only the Zenith row lists Tractor; Others is always appended.
	if len(fuels) != 2 || fuels[0] != "Petrol" || fuels[1] != "Others" {
		t.Errorf("filtered fuels = %v, want [Petrol Others]", fuels)
	}

	business, err := svc.Values(ctx, "business_type", rates.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(business) != 2 || business[0] != "New" || business[1] != "Old" {
		t.Errorf("business types = %v, want [New Old]", business)
	}

	if _, err := svc.Values(ctx, "bogus", rates.Query{}); err == nil {
		t.Error("unknown field should error")
	}
}

func TestValuesSpanAllBatches(t *testing.T) {
	svc, st := newTestService(t, testRows())
	ctx := context.Background()

	// Stage a second, unpublished batch; dropdowns still see it.
	_, err := st.ImportBatch(ctx, "extra", []rates.RawRow{{
		rates.ColCompany:     "Fresh Insurer",
		rates.ColFuelType:    "CNG",
		rates.ColFinalPayout: "22",
	}})
	if err != nil {
		t.Fatal(err)
	}

	fuels, err := svc.Values(ctx, "fuel_type", rates.Query{})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range fuels {
		if f == "CNG" {
			found = true
		}
	}
	if !found {
		t.Errorf("fuels = %v, want CNG from the staged batch", fuels)
	}
}

func TestValuesGVWSlabs(t *testing.T) {
	rows := []rates.RawRow{
		{rates.ColCompany: "A", rates.ColFinalPayout: "20", rates.ColGVWMin: "25", rates.ColGVWMax: "40"},
		{rates.ColCompany: "B", rates.ColFinalPayout: "20", rates.ColGVWMin: "40"},
		{rates.ColCompany: "C", rates.ColFinalPayout: "20", rates.ColGVWMin: "0", rates.ColGVWMax: "7.5"},
		{rates.ColCompany: "D", rates.ColFinalPayout: "20"}, // no bounds, no slab
	}
	svc, _ := newTestService(t, rows)

	slabs, err := svc.Values(context.Background(), "gvw_slab", rates.Query{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0|7.5", "25|40", "40|MAX"}
	if len(slabs) != len(want) {
		t.Fatalf("slabs = %v, want %v", slabs, want)
	}
	for i := range want {
		if slabs[i] != want[i] {
			t.Errorf("slabs = %v, want %v", slabs, want)
			break
		}
	}
}

func TestStatesIncludeOthers(t *testing.T) {
	svc, _ := newTestService(t, testRows())

	states, err := svc.Values(context.Background(), "state", rates.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(states) == 0 || states[len(states)-1] != "Others" {
		t.Errorf("states = %v, want Others appended last", states)
	}
	foundTN := false
	for _, s := range states {
		if s == "Tamil Nadu" {
			foundTN = true
		}
	}
	if !foundTN {
		t.Errorf("states = %v, want display name Tamil Nadu", states)
	}
}

func TestRTOOptions(t *testing.T) {
	svc, _ := newTestService(t, nil)

	opts := svc.RTOOptions("Tamil Nadu")
	if len(opts) != 3 {
		t.Fatalf("len(opts) = %d, want 2 codes + Others", len(opts))
	}
	if opts[0].Code != "01" || opts[1].Code != "02" {
		t.Errorf("options = %+v, want natural code order", opts)
	}
	if opts[2].Code != rto.QueryOthers {
		t.Errorf("last option = %+v, want Others", opts[2])
	}

	if got := svc.RTOOptions("Madhya Pradesh"); got != nil {
		t.Errorf("states without codes = %v, want nil", got)
	}
}
