package rates

import (
	"fmt"
	"strconv"
	"strings"
)

// Query is one user lookup request. Empty fields mean "no filter for this
// attribute", which is distinct from a record-side wildcard. Sentinel
// "Others"/"Other" selections are cleared to empty by NormalizeSentinels.
type Query struct {
	State           string `json:"state"`
	RTOCode         string `json:"rto_code"` // normalized code, "Others", or ""
	VehicleCategory string `json:"vehicle_category"`
	VehicleType     string `json:"vehicle_type"`
	FuelType        string `json:"fuel_type"`
	PolicyType      string `json:"policy_type"`
	BusinessType    string `json:"business_type"`
	VehicleAge      string `json:"vehicle_age"`
	CCSlab          string `json:"cc_slab"`
	GVWSlab         string `json:"gvw_slab"` // "min|max", max may be "MAX"
	GVWValue        string `json:"gvw_value"`
	WattSlab        string `json:"watt_slab"`
	Seating         string `json:"seating_capacity"`
	NCBSlab         string `json:"ncb_slab"`
	CPACover        string `json:"cpa_cover"`
	ZeroDep         string `json:"zero_depreciation"`
	Trailer         string `json:"trailer"`
	Make            string `json:"make"`
	Model           string `json:"model"`
}

// NormalizeSentinels clears catch-all dropdown selections so they apply no
// filter, and maps the seating "Other" option to its stored N/A form.
func (q *Query) NormalizeSentinels() {
	q.FuelType = clearOthers(q.FuelType)
	q.CCSlab = clearOthers(q.CCSlab)
	q.WattSlab = clearOthers(q.WattSlab)
	if isSentinel(q.Seating, "other", "others") {
		q.Seating = "N/A"
	}
	if isSentinel(q.Make, "other", "others", "all", "all make", "n/a") {
		q.Make = ""
	}
	if isSentinel(q.Model, "other", "others", "all", "n/a") {
		q.Model = ""
	}
	q.BusinessType = NormalizeBusinessType(q.BusinessType)
}

func clearOthers(v string) string {
	if isSentinel(v, "others") {
		return ""
	}
	return v
}

func isSentinel(v string, sentinels ...string) bool {
	low := strings.ToLower(strings.TrimSpace(v))
	for _, s := range sentinels {
		if low == s {
			return true
		}
	}
	return false
}

// IsPCV reports whether the query targets a Passenger Carrying Vehicle.
func (q *Query) IsPCV() bool {
	cat := strings.ToLower(q.VehicleCategory)
	return strings.Contains(cat, "pcv") || strings.Contains(cat, "passenger")
}

// IsGCVFourWheeler reports whether the query is for a GCV 4-wheeler, which
// gets strict GVW slab containment instead of the permissive fallback.
func (q *Query) IsGCVFourWheeler() bool {
	cat := strings.ToLower(q.VehicleCategory)
	vt := strings.ToLower(q.VehicleType)
	return strings.Contains(cat, "gcv") &&
		(strings.Contains(vt, "4 wheeler") || strings.Contains(vt, "4 wheeler goods"))
}

// ParseGVWSlab parses a "min|max" slab selection ("25|40", "40|MAX") into a
// NumericRange with an open upper bound for MAX.
func ParseGVWSlab(s string) (NumericRange, error) {
	parts := strings.Split(strings.TrimSpace(s), "|")
	if len(parts) != 2 {
		return NumericRange{}, fmt.Errorf("gvw slab %q: want min|max", s)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return NumericRange{}, fmt.Errorf("gvw slab %q: bad lower bound: %w", s, err)
	}
	r := NumericRange{Min: &min}
	if upper := strings.TrimSpace(parts[1]); !strings.EqualFold(upper, "MAX") {
		max, err := strconv.ParseFloat(upper, 64)
		if err != nil {
			return NumericRange{}, fmt.Errorf("gvw slab %q: bad upper bound: %w", s, err)
		}
		r.Max = &max
	}
	return r, nil
}
