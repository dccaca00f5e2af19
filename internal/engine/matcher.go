// Package engine evaluates one query against one rate record: the central
// matching predicate. Matching is a pure function over record, query, and
// the evaluation time; every present query field must be satisfied.
package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/covernest/ratedesk/internal/rates"
)

// Matches reports whether the record applies to the query at time now.
// Fields absent from the query apply no filter. All per-field checks are
// ANDed, together with the RTO rule and the record's validity window.
func Matches(rec *rates.RateRecord, q *rates.Query, now time.Time) bool {
	if !rec.EffectiveAt(now) {
		return false
	}
	if !stateMatches(rec, q.State) {
		return false
	}
	if present(q.RTOCode) && !rec.RTO.Matches(q.RTOCode) {
		return false
	}
	if !vehicleTypeMatches(rec, q.VehicleType) {
		return false
	}
	if v := strings.TrimSpace(q.VehicleCategory); v != "" && !rec.VehicleCategory.Matches(rates.VehicleCategoryCode(v)) {
		return false
	}
	if v := strings.TrimSpace(q.FuelType); v != "" && !rec.FuelType.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.PolicyType); v != "" && !rec.PolicyType.Matches(v) {
		return false
	}
	if !businessMatches(rec, q.BusinessType) {
		return false
	}
	if v := strings.TrimSpace(q.CCSlab); v != "" && !rec.CCSlab.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.WattSlab); v != "" && !rec.WattSlab.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.NCBSlab); v != "" && !rec.NCBSlab.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.CPACover); v != "" && !rec.CPACover.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.ZeroDep); v != "" && !rec.ZeroDep.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.Trailer); v != "" && !rec.Trailer.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.Make); v != "" && !rec.Make.Matches(v) {
		return false
	}
	if v := strings.TrimSpace(q.Model); v != "" && !rec.Model.Matches(v) {
		return false
	}
	if !seatingMatches(rec, q) {
		return false
	}
	if !ageMatches(rec, q.VehicleAge) {
		return false
	}
	if !gvwMatches(rec, q) {
		return false
	}
	return true
}

// present reports whether a state/RTO style field carries a real value.
func present(v string) bool {
	t := strings.TrimSpace(v)
	return t != "" && !strings.EqualFold(t, "N/A")
}

// stateMatches handles the query-side "Others" sentinel: it selects records
// with no explicit state (wildcard) or exclusion-style states, never records
// naming specific states.
func stateMatches(rec *rates.RateRecord, state string) bool {
	if !present(state) {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(state), "Others") {
		return rec.State.Kind == rates.RuleWildcard || rec.State.Kind == rates.RuleExclusion
	}
	return rec.State.Matches(rates.StateCode(state))
}

// vehicleTypeMatches consults the alias table so textual variants of one
// physical category compare equal.
func vehicleTypeMatches(rec *rates.RateRecord, vehicleType string) bool {
	v := strings.TrimSpace(vehicleType)
	if v == "" {
		return true
	}
	return rec.VehicleType.MatchesAny(rates.VehicleTypeVariants(v))
}

// businessMatches applies the bespoke business-type rule: a blank record
// cell matches Old queries only; an insurer must state New explicitly.
func businessMatches(rec *rates.RateRecord, businessType string) bool {
	v := rates.NormalizeBusinessType(businessType)
	if v == "" {
		return true
	}
	if rec.BusinessBlank {
		return strings.EqualFold(v, "Old")
	}
	return rec.BusinessType.Matches(v)
}

// seatingMatches treats record-side No/N-A/All seating as open only for
// Passenger Carrying Vehicle queries that are not Autos.
func seatingMatches(rec *rates.RateRecord, q *rates.Query) bool {
	v := strings.TrimSpace(q.Seating)
	if v == "" {
		return true
	}
	if q.IsPCV() && !strings.EqualFold(strings.TrimSpace(q.VehicleType), "Auto") {
		return rec.SeatingAny.Matches(v)
	}
	return rec.SeatingStrict.Matches(v)
}

// ageMatches does point-in-range matching on the record's age bounds;
// absent bounds are open and a non-numeric query age applies no filter.
func ageMatches(rec *rates.RateRecord, age string) bool {
	t := strings.TrimSpace(age)
	if t == "" {
		return true
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return true
	}
	if rec.AgeMin != nil && *rec.AgeMin > n {
		return false
	}
	if rec.AgeMax != nil && *rec.AgeMax < n {
		return false
	}
	return true
}

// gvwMatches prefers slab-overlap matching when a slab was selected, falling
// back to point-in-range for an explicit tonnage value. GCV 4-wheelers get
// strict containment: records without a full GVW range never match a point
// query there.
func gvwMatches(rec *rates.RateRecord, q *rates.Query) bool {
	if slab := strings.TrimSpace(q.GVWSlab); slab != "" {
		qr, err := rates.ParseGVWSlab(slab)
		if err != nil {
			return true
		}
		rr, ok := rec.GVWRange()
		if !ok || rr.Min == nil {
			return false
		}
		return rr.Overlaps(qr)
	}

	t := strings.TrimSpace(q.GVWValue)
	if t == "" {
		return true
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return true
	}
	bounded := rec.GVWMin != nil && rec.GVWMax != nil
	if q.IsGCVFourWheeler() {
		return bounded && *rec.GVWMin <= v && *rec.GVWMax >= v
	}
	if rec.GVWMin == nil && rec.GVWMax == nil {
		return true
	}
	return bounded && *rec.GVWMin <= v && *rec.GVWMax >= v
}
