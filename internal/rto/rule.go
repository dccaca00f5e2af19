package rto

import "strings"

// QueryOthers is the sentinel a caller sends when no specific RTO is
// declared for the query.
const QueryOthers = "Others"

// Rule is a record's RTO applicability, parsed once at import time.
// A blank cell applies everywhere; "Except 01,02" applies everywhere but the
// listed codes; any other cell is a positive inclusion list.
type Rule struct {
	AppliesAll bool     `json:"appliesAll"`
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
}

// ParseRule parses a raw RTO cell into a Rule. Tokens are normalized and
// deduplicated, preserving order.
func ParseRule(cell string) Rule {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Rule{AppliesAll: true}
	}
	low := strings.ToLower(s)
	if strings.HasPrefix(low, "except ") {
		return Rule{AppliesAll: true, Exclude: splitCodes(s[len("except "):])}
	}
	return Rule{Include: splitCodes(s)}
}

func splitCodes(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Split(s, ",") {
		c := Normalize(tok)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Unrestricted reports whether the record carried no RTO declaration at all.
func (r Rule) Unrestricted() bool {
	return r.AppliesAll && len(r.Include) == 0 && len(r.Exclude) == 0
}

// Matches reports whether the rule covers the given normalized query code.
// The "Others" sentinel matches only records with no RTO declaration or a
// pure exclusion pattern; an explicit inclusion list never counts as Others.
func (r Rule) Matches(code string) bool {
	c := strings.TrimSpace(code)
	if c == "" {
		return true
	}
	if strings.EqualFold(c, QueryOthers) {
		return r.Unrestricted() || (r.AppliesAll && len(r.Include) == 0)
	}
	for _, inc := range r.Include {
		if inc == c {
			return true
		}
	}
	if !r.AppliesAll {
		return false
	}
	for _, exc := range r.Exclude {
		if exc == c {
			return false
		}
	}
	return true
}
