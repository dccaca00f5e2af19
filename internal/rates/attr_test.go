package rates

import "testing"

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		name string
		cell string
		extra []string
		kind RuleKind
		tokens int
	}{
		{name: "blank is wildcard", cell: "", kind: RuleWildcard},
		{name: "null is wildcard", cell: "Null", kind: RuleWildcard},
		{name: "all is wildcard", cell: "ALL", kind: RuleWildcard},
		{name: "extra wildcard token", cell: "N/A", extra: []string{"n/a"}, kind: RuleWildcard},
		{name: "single value", cell: "Diesel", kind: RuleExact, tokens: 1},
		{name: "comma list", cell: "Petrol, Diesel, CNG", kind: RuleList, tokens: 3},
		{name: "except prefix", cell: "Except School Bus, Staff Bus", kind: RuleExclusion, tokens: 2},
		{name: "declined prefix", cell: "Declined Tata", kind: RuleExclusion, tokens: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ParseAttribute(tt.cell, tt.extra...)
			if rule.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", rule.Kind, tt.kind)
			}
			if len(rule.Tokens) != tt.tokens {
				t.Errorf("len(Tokens) = %d, want %d", len(rule.Tokens), tt.tokens)
			}
		})
	}
}

func TestAttributeRuleMatches(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		value string
		want  bool
	}{
		{"wildcard matches anything", "", "Diesel", true},
		{"exact match case-insensitive", "Diesel", "diesel", true},
		{"exact mismatch", "Diesel", "Petrol", false},
		{"list member", "Petrol,Diesel,CNG", "CNG", true},
		{"list is whole-token", "Petrol,Diesel", "Die", false},
		{"list token with spaces", "School Bus, Staff Bus", "staff bus", true},
		{"exclusion rejects member", "Except School Bus", "School Bus", false},
		{"exclusion accepts others", "Except School Bus", "Staff Bus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ParseAttribute(tt.cell)
			if got := rule.Matches(tt.value); got != tt.want {
				t.Errorf("ParseAttribute(%q).Matches(%q) = %v, want %v", tt.cell, tt.value, got, tt.want)
			}
		})
	}
}

func TestAttributeRuleMatchesAny(t *testing.T) {
	variants := []string{"Backho Loader", "Bacho Loader"}

	list := ParseAttribute("Bacho Loader, Tractor")
	if !list.MatchesAny(variants) {
		t.Error("list rule should match when any variant is a member")
	}

	// An exclusion naming one variant excludes the whole physical label.
	excl := ParseAttribute("Except Bacho Loader")
	if excl.MatchesAny(variants) {
		t.Error("exclusion rule should reject when any variant is excluded")
	}
	if !excl.MatchesAny([]string{"Tractor"}) {
		t.Error("exclusion rule should accept unrelated values")
	}

	if ParseAttribute("").MatchesAny(nil) != true {
		t.Error("wildcard should match empty candidate list")
	}
	if ParseAttribute("Tractor").MatchesAny(nil) {
		t.Error("non-wildcard should not match empty candidate list")
	}
}

func TestNumericRange(t *testing.T) {
	r := NumericRange{Min: Float(25), Max: Float(40)}

	if !r.Contains(25) || !r.Contains(40) || !r.Contains(30) {
		t.Error("bounds are inclusive")
	}
	if r.Contains(24.9) || r.Contains(40.1) {
		t.Error("values outside bounds must not match")
	}

	openUpper := NumericRange{Min: Float(40)}
	if !openUpper.Contains(1000) {
		t.Error("absent upper bound is unbounded")
	}

	overlapTests := []struct {
		name string
		a, b NumericRange
		want bool
	}{
		{"disjoint", NumericRange{Min: Float(0), Max: Float(10)}, NumericRange{Min: Float(20), Max: Float(30)}, false},
		{"touching bounds overlap", NumericRange{Min: Float(25), Max: Float(40)}, NumericRange{Min: Float(40), Max: Float(60)}, true},
		{"nested", NumericRange{Min: Float(0), Max: Float(100)}, NumericRange{Min: Float(20), Max: Float(30)}, true},
		{"open upper vs high slab", NumericRange{Min: Float(40)}, NumericRange{Min: Float(100), Max: Float(200)}, true},
		{"open both always overlaps", NumericRange{}, NumericRange{Min: Float(1), Max: Float(2)}, true},
	}
	for _, tt := range overlapTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}
