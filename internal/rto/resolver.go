// Package rto normalizes Regional Transport Office codes and evaluates
// per-record RTO applicability rules.
package rto

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	statePrefixRe = regexp.MustCompile(`^[A-Z]{1,3}\s*[- ]\s*`)
	numericRe     = regexp.MustCompile(`^\d+$`)
	alnumRe       = regexp.MustCompile(`^[0-9A-Z]+$`)
	splitRe       = regexp.MustCompile(`^(\d+)([A-Z]*)$`)
)

// Normalize converts a raw RTO token to its canonical dropdown form:
// uppercase, state prefix stripped ("PY-02" -> "02", "TN 01" -> "01"),
// pure numerics zero-padded to two digits, alphanumeric codes ("15M") kept.
// Anything else is returned trimmed and uppercased.
func Normalize(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return ""
	}
	t = strings.TrimSpace(statePrefixRe.ReplaceAllString(t, ""))
	t = strings.ReplaceAll(t, " ", "")
	if t == "" {
		return ""
	}
	if numericRe.MatchString(t) {
		n, _ := strconv.Atoi(t)
		return fmt.Sprintf("%02d", n)
	}
	if m := splitRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d%s", n, m[2])
	}
	if alnumRe.MatchString(t) {
		return t
	}
	return t
}

// sortKey orders codes numerically first ("02" < "10" < "15M"), with purely
// alphabetic codes after all numeric-prefixed ones.
type sortKey struct {
	num    int
	suffix string
}

const nonNumericBucket = 1 << 30

func keyFor(code string) sortKey {
	c := strings.ToUpper(strings.TrimSpace(code))
	if m := splitRe.FindStringSubmatch(c); m != nil {
		n, _ := strconv.Atoi(m[1])
		return sortKey{num: n, suffix: m[2]}
	}
	return sortKey{num: nonNumericBucket, suffix: c}
}

// Less reports whether code a sorts before code b for UI listing.
func Less(a, b string) bool {
	ka, kb := keyFor(a), keyFor(b)
	if ka.num != kb.num {
		return ka.num < kb.num
	}
	return ka.suffix < kb.suffix
}

// SortCodes sorts codes in place in natural RTO order.
func SortCodes(codes []string) {
	sort.Slice(codes, func(i, j int) bool { return Less(codes[i], codes[j]) })
}
