// Package season turns heterogeneous year and crop-season encodings into a
// four-digit calendar year.
//
// Source files write years as plain integers (2019), two-digit shorthand
// (22), concatenated biennium codes (2324 for the 2023/24 season) or free
// text ("safra 2023"). Biennium codes resolve to their later year.
package season

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/vbpmap/pkg/constants"
)

// Year is one normalized value; OK is false when the value is absent.
type Year struct {
	Value int
	OK    bool
}

var fourDigits = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)

// Normalize normalizes a single value. Numeric text follows the numeric
// policy, anything else the textual policy.
func Normalize(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if v, ok := parseNumber(raw); ok {
		return fromNumber(v)
	}
	return fromText(raw)
}

// NormalizeColumn normalizes a whole column. When most non-blank values are
// numeric the column is numeric and non-numeric values are absent;
// otherwise every value goes through the textual policy.
func NormalizeColumn(values []string) []Year {
	out := make([]Year, len(values))

	numeric, nonBlank := 0, 0
	parsed := make([]float64, len(values))
	isNum := make([]bool, len(values))
	for i, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		nonBlank++
		if v, ok := parseNumber(raw); ok {
			parsed[i], isNum[i] = v, true
			numeric++
		}
	}
	if nonBlank == 0 {
		return out
	}

	if numeric*2 > nonBlank {
		for i := range values {
			if isNum[i] {
				out[i].Value, out[i].OK = fromNumber(parsed[i])
			}
		}
		return out
	}

	for i, raw := range values {
		out[i].Value, out[i].OK = fromText(raw)
	}
	return out
}

// fromNumber applies the numeric policy.
func fromNumber(v float64) (int, bool) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	year := int(v)
	if year > constants.MaxYear {
		year = constants.CenturyBase + year%100
	}
	return bounded(year)
}

// fromText applies the textual policy: the first run of exactly four digits.
func fromText(raw string) (int, bool) {
	m := fourDigits.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return bounded(year)
}

// bounded remaps two-digit shorthand and rejects years outside the window.
func bounded(year int) (int, bool) {
	if year < constants.MinYear {
		year = constants.CenturyBase + year%100
	}
	if year < constants.MinYear || year > constants.MaxYear {
		return 0, false
	}
	return year, true
}

// parseNumber accepts integers and decimals, with "." or "," as the
// decimal separator ("2023.0" from spreadsheet cells is common).
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
