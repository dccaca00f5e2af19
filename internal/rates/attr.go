package rates

import (
	"strings"
)

// RuleKind identifies the variant of an AttributeRule.
type RuleKind int

const (
	// RuleWildcard matches any query value.
	RuleWildcard RuleKind = iota
	// RuleExact matches a single stored token.
	RuleExact
	// RuleList matches any member of a comma-separated token set.
	RuleList
	// RuleExclusion matches everything except the named tokens.
	RuleExclusion
)

// AttributeRule is one field's stored rule on a rate record, parsed once at
// record-load time. Comparison is whole-token and case-insensitive; "Except"
// / "Declined" prefixes become an Exclusion variant here instead of being
// re-scanned on every query.
type AttributeRule struct {
	Kind   RuleKind
	Tokens []string // trimmed tokens for Exact/List/Exclusion
}

// baseWildcardTokens are treated as "applies to everything" in every field.
var baseWildcardTokens = map[string]struct{}{
	"":     {},
	"null": {},
	"none": {},
	"all":  {},
}

// ParseAttribute parses one stored cell into an AttributeRule.
// extraWildcards lists additional field-specific tokens (e.g. "n/a", "no",
// "all make") that collapse to the Wildcard variant.
func ParseAttribute(cell string, extraWildcards ...string) AttributeRule {
	s := strings.TrimSpace(cell)
	low := strings.ToLower(s)

	if _, ok := baseWildcardTokens[low]; ok {
		return AttributeRule{Kind: RuleWildcard}
	}
	for _, w := range extraWildcards {
		if low == strings.ToLower(w) {
			return AttributeRule{Kind: RuleWildcard}
		}
	}

	if rest, ok := stripExclusionPrefix(s); ok {
		return AttributeRule{Kind: RuleExclusion, Tokens: splitTokens(rest)}
	}

	tokens := splitTokens(s)
	if len(tokens) > 1 {
		return AttributeRule{Kind: RuleList, Tokens: tokens}
	}
	return AttributeRule{Kind: RuleExact, Tokens: tokens}
}

// stripExclusionPrefix removes a leading "except " or "declined " marker,
// case-insensitively. Returns the remainder and whether a marker was found.
func stripExclusionPrefix(s string) (string, bool) {
	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "except "):
		return strings.TrimSpace(s[len("except "):]), true
	case strings.HasPrefix(low, "declined "):
		return strings.TrimSpace(s[len("declined "):]), true
	}
	return s, false
}

// splitTokens explodes a comma-separated cell into trimmed non-empty tokens.
func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether a single query value satisfies the rule.
// List matching is whole-token: "Petrol,Diesel" matches "Diesel", never "Die".
func (r AttributeRule) Matches(value string) bool {
	switch r.Kind {
	case RuleWildcard:
		return true
	case RuleExact, RuleList:
		return r.containsToken(value)
	case RuleExclusion:
		return !r.containsToken(value)
	}
	return false
}

// MatchesAny reports whether any of the candidate values satisfies the rule.
// For Exclusion rules all candidates must avoid the excluded set, mirroring
// how alias variants of one physical label are treated as the same value.
func (r AttributeRule) MatchesAny(values []string) bool {
	if len(values) == 0 {
		return r.Kind == RuleWildcard
	}
	switch r.Kind {
	case RuleWildcard:
		return true
	case RuleExact, RuleList:
		for _, v := range values {
			if r.containsToken(v) {
				return true
			}
		}
		return false
	case RuleExclusion:
		for _, v := range values {
			if r.containsToken(v) {
				return false
			}
		}
		return true
	}
	return false
}

func (r AttributeRule) containsToken(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, t := range r.Tokens {
		if strings.ToLower(t) == v {
			return true
		}
	}
	return false
}

// IsWildcard reports whether the rule matches every value.
func (r AttributeRule) IsWildcard() bool { return r.Kind == RuleWildcard }

// NumericRange is a closed numeric interval with optional open ends.
type NumericRange struct {
	Min *float64
	Max *float64
}

// Open reports whether both bounds are absent.
func (n NumericRange) Open() bool { return n.Min == nil && n.Max == nil }

// Contains reports whether v falls inside the range; an absent bound is
// treated as unbounded on that side.
func (n NumericRange) Contains(v float64) bool {
	if n.Min != nil && v < *n.Min {
		return false
	}
	if n.Max != nil && v > *n.Max {
		return false
	}
	return true
}

// Overlaps reports whether the two intervals intersect. Bounds are inclusive,
// so touching ranges ([25,40] vs [40,60]) overlap.
func (n NumericRange) Overlaps(q NumericRange) bool {
	if n.Min != nil && q.Max != nil && *n.Min > *q.Max {
		return false
	}
	if n.Max != nil && q.Min != nil && *n.Max < *q.Min {
		return false
	}
	return true
}

// Float returns a pointer to v; a small helper for building ranges.
func Float(v float64) *float64 { return &v }
