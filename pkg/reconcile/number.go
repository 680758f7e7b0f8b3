package reconcile

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// normalizeNumber rewrites a spreadsheet number into Go syntax. Both
// "1.234,5" and "1,234.5" are accepted: when both separators appear the
// last one is the decimal mark; a lone separator repeated is a thousands
// separator. It returns "" when nothing numeric remains.
func normalizeNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '_':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return ""
	}

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// parseFloat parses a measure; anything unparseable is zero.
func parseFloat(raw string) float64 {
	s := normalizeNumber(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseDecimal parses a currency value exactly; anything unparseable is zero.
func parseDecimal(raw string) decimal.Decimal {
	s := normalizeNumber(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
