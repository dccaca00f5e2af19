// Package lookup wires the query pipeline together: validate the request,
// load one snapshot, match records, rank the results, and serve the distinct
// dropdown values the UI needs to build the next query.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/covernest/ratedesk/internal/engine"
	"github.com/covernest/ratedesk/internal/rank"
	"github.com/covernest/ratedesk/internal/rates"
	"github.com/covernest/ratedesk/internal/rto"
	"github.com/covernest/ratedesk/internal/snapshot"
	"github.com/covernest/ratedesk/internal/store"
	"github.com/covernest/ratedesk/internal/validation"
)

// Result statuses. A validation failure and an empty match set are ordinary
// outcomes, not transport errors; both travel as a 200 response.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

// Result is the outcome of one payout check.
type Result struct {
	Status         string       `json:"status"`
	Message        string       `json:"message,omitempty"`
	Field          string       `json:"field,omitempty"`
	RTOCode        string       `json:"rto_code,omitempty"`
	Payouts        []rank.Entry `json:"payouts,omitempty"`
	TotalCompanies int          `json:"total_companies"`
}

// Service runs payout checks and dropdown-value listings.
type Service struct {
	store  store.Store
	master *rto.Master
	ranker *rank.Ranker
	now    func() time.Time
}

// New builds a Service. A nil ranker falls back to the defaults.
func New(st store.Store, master *rto.Master, ranker *rank.Ranker) *Service {
	if ranker == nil {
		ranker = rank.New(0, nil)
	}
	if master == nil {
		master = rto.NewMaster(nil)
	}
	return &Service{store: st, master: master, ranker: ranker, now: time.Now}
}

// WithClock overrides the evaluation clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CheckPayout validates the query, matches it against the current snapshot,
// and ranks the matched insurers. The snapshot is loaded exactly once and a
// single evaluation time is used for every record, so one query never mixes
// batches or straddles a validity boundary.
func (s *Service) CheckPayout(ctx context.Context, q rates.Query) Result {
	q.NormalizeSentinels()
	if strings.TrimSpace(q.RTOCode) != "" && !strings.EqualFold(q.RTOCode, rto.QueryOthers) {
		q.RTOCode = rto.Normalize(q.RTOCode)
	}

	if err := validation.ValidateQuery(&q); err != nil {
		res := Result{Status: StatusError, Message: err.Error()}
		var verr *validation.Error
		if errors.As(err, &verr) {
			res.Field = verr.Field
		}
		return res
	}

	snap := snapshot.Load()
	now := s.now()

	var matches []rank.Match
	for i := range snap.Records {
		rec := &snap.Records[i]
		if !engine.Matches(rec, &q, now) {
			continue
		}
		matches = append(matches, rank.Match{
			Company:      rec.Company,
			Conditions:   rec.Conditions,
			SeatingLabel: rec.SeatingLabel,
			Payout:       rec.FinalPayout,
		})
	}

	entries := s.ranker.Rank(matches, q.IsPCV())
	s.logQuery(ctx, &q, len(entries))

	if len(entries) == 0 {
		return Result{
			Status:  StatusNoData,
			Message: "No payout data found for the selected combination.",
			RTOCode: q.RTOCode,
		}
	}
	return Result{
		Status:         StatusSuccess,
		RTOCode:        q.RTOCode,
		Payouts:        entries,
		TotalCompanies: distinctCompanies(entries),
	}
}

// logQuery records the analytics entry; failures are warned, never surfaced.
func (s *Service) logQuery(ctx context.Context, q *rates.Query, results int) {
	err := s.store.LogQuery(ctx, store.QueryLogEntry{
		State:       q.State,
		RTO:         q.RTOCode,
		VehicleType: q.VehicleType,
		FuelType:    q.FuelType,
		PolicyType:  q.PolicyType,
		ResultCount: results,
	})
	if err != nil {
		log.Warn().Err(err).Msg("query log write failed")
	}
}

func distinctCompanies(entries []rank.Entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[strings.ToLower(e.Company)] = struct{}{}
	}
	return len(seen)
}

// Values returns the distinct dropdown values for one field, narrowed by the
// filters already chosen. Listings span every imported batch so a value that
// ever appeared stays selectable, and they use the same matching predicate as
// the payout check so a listed value always has at least one candidate row.
func (s *Service) Values(ctx context.Context, field string, filter rates.Query) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "state":
		return s.states(ctx)
	case "business_type":
		// Fixed vocabulary after normalization; not data-derived.
		return []string{"New", "Old"}, nil
	case "vehicle_category":
		return s.distinct(ctx, filter, categoryTokens, nil)
	case "vehicle_type":
		return s.distinct(ctx, filter, vehicleTypeTokens, nil)
	case "fuel_type":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.FuelType }), appendOthers)
	case "policy_type":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.PolicyType }), nil)
	case "cc_slab":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.CCSlab }), appendOthers)
	case "watt_slab":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.WattSlab }), appendOthers)
	case "gvw_slab":
		return s.gvwSlabs(ctx, filter)
	case "seating_capacity":
		return s.distinct(ctx, filter, seatingTokens, appendOther)
	case "ncb_slab":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.NCBSlab }), nil)
	case "cpa_cover":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.CPACover }), nil)
	case "zero_depreciation":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.ZeroDep }), nil)
	case "trailer":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.Trailer }), nil)
	case "make":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.Make }), appendOthers)
	case "model":
		return s.distinct(ctx, filter, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.Model }), appendOthers)
	default:
		return nil, fmt.Errorf("unknown values field %q", field)
	}
}

// RTOOptions returns the RTO dropdown entries for a state, with the Others
// catch-all appended for states that carry codes.
func (s *Service) RTOOptions(state string) []rto.Option {
	code := rates.StateCode(state)
	if !s.master.HasCodes(code) {
		return nil
	}
	opts := s.master.Options(code)
	opts = append(opts, rto.Option{Code: rto.QueryOthers, Name: "", Label: rto.QueryOthers})
	return opts
}

// states lists the state display names present in the data plus Others.
func (s *Service) states(ctx context.Context) ([]string, error) {
	codes, err := s.distinct(ctx, rates.Query{}, ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.State }), nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(codes)+1)
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		name := c
		if display, ok := rates.StateDisplayMap[strings.ToUpper(c)]; ok {
			name = display
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	sortFolded(out)
	return append(out, "Others"), nil
}

// gvwSlabs derives the "min|max" slab options from record GVW bounds, sorted
// by the lower bound.
func (s *Service) gvwSlabs(ctx context.Context, filter rates.Query) ([]string, error) {
	records, err := s.matchingRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	type slab struct {
		min   float64
		label string
	}
	seen := make(map[string]slab)
	for i := range records {
		rec := &records[i]
		if rec.GVWMin == nil {
			continue
		}
		upper := "MAX"
		if rec.GVWMax != nil {
			upper = trimFloat(*rec.GVWMax)
		}
		label := trimFloat(*rec.GVWMin) + "|" + upper
		seen[label] = slab{min: *rec.GVWMin, label: label}
	}

	slabs := make([]slab, 0, len(seen))
	for _, sl := range seen {
		slabs = append(slabs, sl)
	}
	sort.Slice(slabs, func(i, j int) bool {
		if slabs[i].min != slabs[j].min {
			return slabs[i].min < slabs[j].min
		}
		return slabs[i].label < slabs[j].label
	})
	out := make([]string, len(slabs))
	for i, sl := range slabs {
		out[i] = sl.label
	}
	return out, nil
}

// distinct collects the tokens of one attribute across every record the
// filter admits.
func (s *Service) distinct(ctx context.Context, filter rates.Query, tokens func(*rates.RateRecord) []string, finish func([]string) []string) ([]string, error) {
	records, err := s.matchingRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for i := range records {
		for _, tok := range tokens(&records[i]) {
			t := strings.TrimSpace(tok)
			if t == "" {
				continue
			}
			key := strings.ToLower(t)
			if _, dup := seen[key]; !dup {
				seen[key] = t
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sortFolded(out)
	if finish != nil {
		out = finish(out)
	}
	return out, nil
}

// matchingRecords parses every stored batch and keeps the records the filter
// query admits under the payout-check predicate.
func (s *Service) matchingRecords(ctx context.Context, filter rates.Query) ([]rates.RateRecord, error) {
	rows, err := s.store.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	filter.NormalizeSentinels()
	now := s.now()

	var out []rates.RateRecord
	for _, row := range rows {
		rec, err := rates.ParseRecord("", row)
		if err != nil {
			continue
		}
		if !engine.Matches(rec, &filter, now) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// ruleTokens adapts a list-style attribute into its positive tokens.
// Wildcard and exclusion rules name no selectable value and contribute none.
func ruleTokens(pick func(*rates.RateRecord) rates.AttributeRule) func(*rates.RateRecord) []string {
	return func(r *rates.RateRecord) []string {
		rule := pick(r)
		if rule.Kind == rates.RuleWildcard || rule.Kind == rates.RuleExclusion {
			return nil
		}
		return rule.Tokens
	}
}

func categoryTokens(r *rates.RateRecord) []string {
	toks := ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.VehicleCategory })(r)
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, rates.VehicleCategoryCode(t))
	}
	return out
}

func vehicleTypeTokens(r *rates.RateRecord) []string {
	toks := ruleTokens(func(r *rates.RateRecord) rates.AttributeRule { return r.VehicleType })(r)
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, rates.CanonicalVehicleType(t))
	}
	return out
}

// seatingTokens lists explicit seating values; textual no-value markers are
// covered by the appended Other option instead.
func seatingTokens(r *rates.RateRecord) []string {
	rule := r.SeatingStrict
	if rule.Kind == rates.RuleWildcard || rule.Kind == rates.RuleExclusion {
		return nil
	}
	var out []string
	for _, t := range rule.Tokens {
		switch strings.ToLower(t) {
		case "n/a", "no":
		default:
			out = append(out, t)
		}
	}
	return out
}

func appendOthers(values []string) []string { return append(values, "Others") }
func appendOther(values []string) []string  { return append(values, "Other") }

func sortFolded(values []string) {
	sort.Slice(values, func(i, j int) bool {
		ci, cj := strings.ToLower(values[i]), strings.ToLower(values[j])
		if ci != cj {
			return ci < cj
		}
		return values[i] < values[j]
	})
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
