// Package rank aggregates matched rate records into the ranked top-N insurer
// list: condition grouping, best payout per (group, insurer), global
// ordering, and OD/TP pairing for pan-India insurers.
package rank

import (
	"sort"
	"strings"
)

// GeneralGroup is the condition group for records without a real condition
// label.
const GeneralGroup = "General"

// DefaultTopN is the number of distinct insurers returned.
const DefaultTopN = 5

// defaultPanIndia enumerates the national insurers that quote Own-Damage and
// Third-Party commissions separately. Business constants, not inferred.
var defaultPanIndia = []string{
	"national insurance",
	"new india",
	"oriental insurance",
	"united india",
}

// Match is one matched record reduced to the fields ranking needs.
type Match struct {
	Company      string
	Conditions   string
	SeatingLabel string // raw seating text, used for PCV group keys
	Payout       float64
}

// Entry is one ranked output row. Pan-India insurers may emit two entries
// (OD and TP) under the same rank.
type Entry struct {
	Rank       int     `json:"rank"`
	Company    string  `json:"company_name"`
	Conditions string  `json:"conditions"` // "" for the General group
	Payout     float64 `json:"payout_percentage"`
}

// Ranker holds the open business rules as configuration rather than
// scattered literals.
type Ranker struct {
	TopN     int
	panIndia map[string]struct{}
}

// New builds a Ranker; empty arguments fall back to the defaults.
func New(topN int, panIndiaInsurers []string) *Ranker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(panIndiaInsurers) == 0 {
		panIndiaInsurers = defaultPanIndia
	}
	set := make(map[string]struct{}, len(panIndiaInsurers))
	for _, name := range panIndiaInsurers {
		set[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return &Ranker{TopN: topN, panIndia: set}
}

// row is one (group, company, payout) aggregate.
type row struct {
	group   string
	company string
	payout  float64
}

// Rank produces the ranked entries for a set of matches. pcv selects
// seating-aware condition grouping for Passenger Carrying Vehicle requests.
// The sort is deterministic: payout descending, company ascending
// (case-insensitive), then group.
func (r *Ranker) Rank(matches []Match, pcv bool) []Entry {
	best := make(map[[2]string]float64)
	groups := make(map[[2]string]row)
	for _, m := range matches {
		group := conditionGroup(m, pcv)
		key := [2]string{group, strings.ToLower(strings.TrimSpace(m.Company))}
		if cur, ok := best[key]; !ok || m.Payout > cur {
			best[key] = m.Payout
			groups[key] = row{group: group, company: strings.TrimSpace(m.Company), payout: m.Payout}
		}
	}

	rows := make([]row, 0, len(groups))
	for _, rw := range groups {
		rows = append(rows, rw)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].payout != rows[j].payout {
			return rows[i].payout > rows[j].payout
		}
		ci, cj := strings.ToLower(rows[i].company), strings.ToLower(rows[j].company)
		if ci != cj {
			return ci < cj
		}
		return rows[i].group < rows[j].group
	})

	// First TopN distinct companies in sorted order, dedup by folded name.
	var leaders []string
	seen := make(map[string]struct{})
	for _, rw := range rows {
		key := strings.ToLower(rw.company)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		leaders = append(leaders, rw.company)
		if len(leaders) >= r.TopN {
			break
		}
	}

	var entries []Entry
	for rankNo, company := range leaders {
		companyRows := rowsFor(rows, company)
		if len(companyRows) == 0 {
			continue
		}
		od, tp := splitODTP(companyRows)

		if _, pan := r.panIndia[strings.ToLower(company)]; pan && od != nil && tp != nil {
			pair := []row{*od, *tp}
			if pair[1].payout > pair[0].payout {
				pair[0], pair[1] = pair[1], pair[0]
			}
			for _, rw := range pair {
				entries = append(entries, newEntry(rankNo+1, rw))
			}
			continue
		}
		entries = append(entries, newEntry(rankNo+1, companyRows[0]))
	}
	return entries
}

func newEntry(rank int, rw row) Entry {
	conditions := rw.group
	if conditions == GeneralGroup {
		conditions = ""
	}
	return Entry{Rank: rank, Company: rw.company, Conditions: conditions, Payout: rw.payout}
}

// rowsFor returns the company's rows preserving the global sort order.
func rowsFor(rows []row, company string) []row {
	var out []row
	for _, rw := range rows {
		if strings.EqualFold(rw.company, company) {
			out = append(out, rw)
		}
	}
	return out
}

// splitODTP picks the company's best Own-Damage and Third-Party rows. Each
// row is classified at most once, OD taking precedence when its group text
// mentions both, so one row never fills both slots.
func splitODTP(rows []row) (od, tp *row) {
	for i := range rows {
		group := strings.ToLower(rows[i].group)
		switch {
		case strings.Contains(group, "commission on od"):
			if od == nil {
				od = &rows[i] // rows already sorted payout-descending
			}
		case strings.Contains(group, "commission on tp"):
			if tp == nil {
				tp = &rows[i]
			}
		}
	}
	return od, tp
}

// conditionGroup derives the grouping key: blank/No/N-A conditions collapse
// to General, and PCV requests prefix a "<n> seating" label so seating-
// specific sub-pricing within one insurer stays distinct.
func conditionGroup(m Match, pcv bool) string {
	cond := strings.TrimSpace(m.Conditions)
	if isEmptyCondition(cond) {
		cond = ""
	}
	if !pcv {
		if cond == "" {
			return GeneralGroup
		}
		return cond
	}

	var parts []string
	if seat := strings.TrimSpace(m.SeatingLabel); seat != "" && !isEmptyCondition(seat) {
		parts = append(parts, seat+" seating")
	}
	if cond != "" {
		parts = append(parts, cond)
	}
	if len(parts) == 0 {
		return GeneralGroup
	}
	return strings.Join(parts, ", ")
}

func isEmptyCondition(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no", "n/a", "all", "null":
		return true
	}
	return false
}
