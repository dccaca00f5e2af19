// Package rates defines the commission-rule data model: typed attribute
// rules, rate records, and the query shape evaluated against them.
package rates

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/covernest/ratedesk/internal/rto"
)

// Raw cell keys as imported from the cleaned spreadsheet.
const (
	ColCompany         = "Company"
	ColState           = "State"
	ColRTOCode         = "RTO_Code"
	ColVehicleCategory = "Vehicle_Category"
	ColVehicleType     = "Vehicle_Type"
	ColFuelType        = "Fuel_Type"
	ColPolicyType      = "Policy_Type"
	ColBusinessType    = "Business_Type"
	ColCCSlab          = "CC_Slab"
	ColGVWSlab         = "GVW_Slab"
	ColWattSlab        = "Watt_Slab"
	ColSeating         = "Seating_Capacity"
	ColNCBSlab         = "NCB_Slab"
	ColCPACover        = "CPA_Cover"
	ColZeroDep         = "Zero_Depreciation"
	ColTrailer         = "Trailer"
	ColMake            = "Make"
	ColModel           = "Model"
	ColConditions      = "Conditions"
	ColFinalPayout     = "Final_Payout"
	ColAgeMin          = "Vehicle_Age_Min"
	ColAgeMax          = "Vehicle_Age_Max"
	ColGVWMin          = "GVW_Min"
	ColGVWMax          = "GVW_Max"
	ColDateFrom        = "Date_From"
	ColDateTill        = "Date_Till"
)

// RawRow is one spreadsheet row as persisted by the import pipeline: raw
// cell text keyed by column name. Records are parsed out of raw rows when a
// batch snapshot is built.
type RawRow map[string]string

// ErrSkipRow marks rows that cannot form a valid rate record (missing
// company or payout). Callers skip such rows with a warning instead of
// failing the whole load.
var ErrSkipRow = errors.New("row is not a valid rate record")

// RateRecord is one commission rule. Records are immutable once parsed;
// they belong to exactly one import batch and are superseded, never edited.
type RateRecord struct {
	Company string
	BatchID string

	State AttributeRule
	RTO   rto.Rule

	VehicleCategory AttributeRule
	VehicleType     AttributeRule
	FuelType        AttributeRule
	PolicyType      AttributeRule
	CCSlab          AttributeRule
	WattSlab        AttributeRule
	NCBSlab         AttributeRule
	CPACover        AttributeRule
	ZeroDep         AttributeRule
	Trailer         AttributeRule
	Make            AttributeRule
	Model           AttributeRule

	// BusinessType: blank cells apply to Old business only, so the blank
	// case is tracked apart from the explicit wildcard tokens (All, N/A).
	BusinessType  AttributeRule
	BusinessBlank bool

	// Seating has two wildcard scopes: PCV queries treat No/N-A/All as
	// open, other categories only treat a truly blank cell as open.
	SeatingAny    AttributeRule
	SeatingStrict AttributeRule
	SeatingLabel  string // raw text for PCV condition-group synthesis

	AgeMin *int
	AgeMax *int
	GVWMin *float64
	GVWMax *float64

	Conditions  string
	FinalPayout float64 // percent; fractions < 1 scaled x100 at parse time

	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// ParseRecord converts a raw imported row into a RateRecord. Returns
// ErrSkipRow (wrapped) when the row lacks the mandatory company or payout.
func ParseRecord(batchID string, row RawRow) (*RateRecord, error) {
	company := cleanCell(row[ColCompany])
	if company == "" {
		return nil, fmt.Errorf("%w: missing company", ErrSkipRow)
	}
	payout, ok := parsePayout(row[ColFinalPayout])
	if !ok {
		return nil, fmt.Errorf("%w: company %q has no parseable payout", ErrSkipRow, company)
	}

	rec := &RateRecord{
		Company: company,
		BatchID: batchID,

		State: ParseAttribute(row[ColState], "n/a"),
		RTO:   rto.ParseRule(cleanCell(row[ColRTOCode])),

		VehicleCategory: ParseAttribute(row[ColVehicleCategory], "n/a"),
		VehicleType:     ParseAttribute(row[ColVehicleType], "n/a"),
		FuelType:        ParseAttribute(row[ColFuelType], "n/a"),
		PolicyType:      ParseAttribute(row[ColPolicyType], "n/a"),
		CCSlab:          ParseAttribute(row[ColCCSlab], "n/a"),
		WattSlab:        ParseAttribute(row[ColWattSlab], "n/a", "no"),
		NCBSlab:         ParseAttribute(row[ColNCBSlab], "n/a"),
		CPACover:        ParseAttribute(row[ColCPACover], "n/a"),
		ZeroDep:         ParseAttribute(row[ColZeroDep], "n/a"),
		Trailer:         ParseAttribute(row[ColTrailer], "n/a"),
		Make:            ParseAttribute(row[ColMake], "n/a", "all make"),
		Model:           ParseAttribute(row[ColModel], "n/a"),

		BusinessType:  parseBusinessRule(row[ColBusinessType]),
		BusinessBlank: cleanCell(row[ColBusinessType]) == "",

		SeatingAny:    ParseAttribute(row[ColSeating], "n/a", "no"),
		SeatingStrict: ParseAttribute(row[ColSeating]),
		SeatingLabel:  seatingLabel(row[ColSeating]),

		AgeMin: parseIntCell(row[ColAgeMin]),
		AgeMax: parseIntCell(row[ColAgeMax]),
		GVWMin: parseFloatCell(row[ColGVWMin]),
		GVWMax: parseFloatCell(row[ColGVWMax]),

		Conditions:  cleanCell(row[ColConditions]),
		FinalPayout: payout,

		EffectiveFrom: parseDateCell(row[ColDateFrom]),
		EffectiveTo:   parseDateCell(row[ColDateTill]),
	}
	return rec, nil
}

// GVWRange returns the record's GVW interval and whether any bound is set.
func (r *RateRecord) GVWRange() (NumericRange, bool) {
	if r.GVWMin == nil && r.GVWMax == nil {
		return NumericRange{}, false
	}
	return NumericRange{Min: r.GVWMin, Max: r.GVWMax}, true
}

// EffectiveAt reports whether the record's validity window contains t.
// Absent bounds are open.
func (r *RateRecord) EffectiveAt(t time.Time) bool {
	day := t.Truncate(24 * time.Hour)
	if r.EffectiveFrom != nil && day.Before(r.EffectiveFrom.Truncate(24*time.Hour)) {
		return false
	}
	if r.EffectiveTo != nil && day.After(r.EffectiveTo.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// cleanCell trims a cell and collapses textual null markers to "".
func cleanCell(s string) string {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "nan", "none", "null":
		return ""
	}
	return t
}

// parsePayout parses the payout percentage. Fraction-style values (0.3381)
// are scaled to percent (33.81) and rounded to 4 decimals.
func parsePayout(s string) (float64, bool) {
	t := cleanCell(s)
	if t == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	if n > 0 && n < 1 {
		n *= 100
	}
	return math.Round(n*10000) / 10000, true
}

func parseFloatCell(s string) *float64 {
	t := cleanCell(s)
	if t == "" {
		return nil
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseIntCell(s string) *int {
	f := parseFloatCell(s)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339, "02-01-2006"}

func parseDateCell(s string) *time.Time {
	t := cleanCell(s)
	if t == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, t); err == nil {
			return &ts
		}
	}
	return nil
}

// parseBusinessRule parses the business-type cell with Renewal/Rollover
// tokens normalized to Old.
func parseBusinessRule(cell string) AttributeRule {
	rule := ParseAttribute(cell, "n/a")
	for i, tok := range rule.Tokens {
		rule.Tokens[i] = NormalizeBusinessType(tok)
	}
	return rule
}

// seatingLabel keeps the raw seating text when it carries a real value.
func seatingLabel(cell string) string {
	t := cleanCell(cell)
	switch strings.ToLower(t) {
	case "", "no", "n/a", "all":
		return ""
	}
	return t
}

// NormalizeBusinessType maps Renewal/Rollover spellings to Old and
// canonicalizes the New/Old casing; other values pass through trimmed.
func NormalizeBusinessType(v string) string {
	t := strings.TrimSpace(v)
	switch strings.ToLower(t) {
	case "renewal", "rollover", "old":
		return "Old"
	case "new":
		return "New"
	}
	return t
}

// bundlePolicyTypes are compared after stripping all whitespace and
// lowercasing, so "Bundle (1+3)" and "bundle(1+3)" are the same.
var bundlePolicyTypes = map[string]struct{}{
	"bundle(1+3)": {},
	"bundle(1+5)": {},
	"bundle(5+5)": {},
}

// IsBundlePolicy reports whether the policy type is one of the recognized
// bundle types.
func IsBundlePolicy(policyType string) bool {
	key := strings.ToLower(strings.Join(strings.Fields(policyType), ""))
	_, ok := bundlePolicyTypes[key]
	return ok
}
