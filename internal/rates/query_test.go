package rates

import "testing"

func TestNormalizeSentinels(t *testing.T) {
	q := Query{
		FuelType:     "Others",
		CCSlab:       "others",
		WattSlab:     "Others",
		Seating:      "Other",
		Make:         "All Make",
		Model:        "Others",
		BusinessType: "renewal",
	}
	q.NormalizeSentinels()

	if q.FuelType != "" || q.CCSlab != "" || q.WattSlab != "" {
		t.Errorf("Others sentinels should clear: fuel=%q cc=%q watt=%q", q.FuelType, q.CCSlab, q.WattSlab)
	}
	if q.Seating != "N/A" {
		t.Errorf("Seating = %q, want N/A", q.Seating)
	}
	if q.Make != "" || q.Model != "" {
		t.Errorf("make/model sentinels should clear: make=%q model=%q", q.Make, q.Model)
	}
	if q.BusinessType != "Old" {
		t.Errorf("BusinessType = %q, want Old", q.BusinessType)
	}

	keep := Query{FuelType: "Diesel", Seating: "32"}
	keep.NormalizeSentinels()
	if keep.FuelType != "Diesel" || keep.Seating != "32" {
		t.Error("real values must pass through unchanged")
	}
}

func TestParseGVWSlab(t *testing.T) {
	r, err := ParseGVWSlab("25|40")
	if err != nil {
		t.Fatal(err)
	}
	if *r.Min != 25 || *r.Max != 40 {
		t.Errorf("slab = [%v,%v], want [25,40]", *r.Min, *r.Max)
	}

	open, err := ParseGVWSlab("40|MAX")
	if err != nil {
		t.Fatal(err)
	}
	if *open.Min != 40 || open.Max != nil {
		t.Error("MAX upper bound should be open")
	}

	for _, bad := range []string{"", "40", "a|b", "40|"} {
		if _, err := ParseGVWSlab(bad); err == nil {
			t.Errorf("ParseGVWSlab(%q) should fail", bad)
		}
	}
}

func TestQueryCategoryHelpers(t *testing.T) {
	pcv := Query{VehicleCategory: "Passenger Carrying Vehicle"}
	if !pcv.IsPCV() {
		t.Error("passenger category should be PCV")
	}
	gcv := Query{VehicleCategory: "GCV"}
	if gcv.IsPCV() {
		t.Error("GCV is not PCV")
	}

	gcv4 := Query{VehicleCategory: "GCV", VehicleType: "4 Wheeler Goods"}
	if !gcv4.IsGCVFourWheeler() {
		t.Error("GCV 4 Wheeler Goods should be a GCV 4-wheeler")
	}
	gcv3 := Query{VehicleCategory: "GCV", VehicleType: "3 Wheeler"}
	if gcv3.IsGCVFourWheeler() {
		t.Error("3 Wheeler is not a GCV 4-wheeler")
	}
}
