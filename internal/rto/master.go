package rto

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// statesWithCodes lists the states whose RTO codes are offered in the UI.
var statesWithCodes = map[string]struct{}{
	"TN": {}, "KA": {}, "KL": {}, "AP": {}, "MH": {}, "TS": {}, "PY": {},
}

// Master maps state code -> RTO code -> district name. It is a read-only
// input loaded once at startup.
type Master struct {
	states map[string]map[string]string
}

// Option is one RTO dropdown entry with a readable district label.
type Option struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// LoadMaster reads the RTO master list from a YAML file shaped as
// state -> {code: district}. Codes are normalized; states outside the
// configured RTO-capable set are dropped. A missing file yields an empty
// master rather than an error.
func LoadMaster(path string) (*Master, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Master{states: map[string]map[string]string{}}, nil
		}
		return nil, fmt.Errorf("read rto master: %w", err)
	}

	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rto master: %w", err)
	}

	m := &Master{states: make(map[string]map[string]string, len(raw))}
	for state, codes := range raw {
		sc := strings.ToUpper(strings.TrimSpace(state))
		if _, ok := statesWithCodes[sc]; !ok {
			continue
		}
		cleaned := make(map[string]string, len(codes))
		for code, district := range codes {
			c := Normalize(code)
			if c == "" {
				continue
			}
			name := strings.TrimSpace(district)
			// Keep the first non-empty district name on duplicates.
			if prev, dup := cleaned[c]; !dup || (prev == "" && name != "") {
				cleaned[c] = name
			}
		}
		m.states[sc] = cleaned
	}
	return m, nil
}

// NewMaster builds a Master from an in-memory mapping; used by tests and
// callers that source the list elsewhere.
func NewMaster(states map[string]map[string]string) *Master {
	if states == nil {
		states = map[string]map[string]string{}
	}
	return &Master{states: states}
}

// Codes returns the state's RTO codes in natural order, or nil when the
// state does not carry codes.
func (m *Master) Codes(state string) []string {
	sc := strings.ToUpper(strings.TrimSpace(state))
	if _, ok := statesWithCodes[sc]; !ok {
		return nil
	}
	codes := make([]string, 0, len(m.states[sc]))
	for c := range m.states[sc] {
		codes = append(codes, c)
	}
	SortCodes(codes)
	return codes
}

// Options returns dropdown options with district labels, sorted naturally.
func (m *Master) Options(state string) []Option {
	sc := strings.ToUpper(strings.TrimSpace(state))
	codeMap := m.states[sc]
	if _, ok := statesWithCodes[sc]; !ok || len(codeMap) == 0 {
		return nil
	}
	codes := m.Codes(sc)
	opts := make([]Option, 0, len(codes))
	for _, c := range codes {
		district := strings.TrimSpace(codeMap[c])
		label := c
		if district != "" {
			label = c + " - " + district
		}
		opts = append(opts, Option{Code: c, Name: district, Label: label})
	}
	return opts
}

// HasCodes reports whether the state is configured to offer RTO codes.
func (m *Master) HasCodes(state string) bool {
	_, ok := statesWithCodes[strings.ToUpper(strings.TrimSpace(state))]
	return ok
}
