// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/reconcile"
	"github.com/agentstation/vbpmap/pkg/resolve"
	"github.com/agentstation/vbpmap/pkg/units"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// DiagnosticsToTableData lists every unmatched label with its row count.
func DiagnosticsToTableData(r reconcile.Report) Data {
	rows := make([][]string, 0, len(r.MunicipalityRows)+len(r.ProductRows))
	for _, l := range r.MunicipalityRows {
		rows = append(rows, []string{"municipality", l.Label, FormatCount(l.Rows)})
	}
	for _, l := range r.ProductRows {
		rows = append(rows, []string{"product", l.Label, FormatCount(l.Rows)})
	}
	return Data{
		Headers:         []string{"Domain", "Label", "Rows"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// UnitsToTableData converts the unit conversion table.
func UnitsToTableData(entries []units.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Unit,
			strconv.FormatFloat(e.Factor, 'f', -1, 64),
			FormatBool(e.Convertible),
		})
	}
	return Data{
		Headers:         []string{"Unit", "Factor (" + units.Common + ")", "Convertible"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignCenter},
	}
}

// CatalogSummaryToTableData converts a catalog summary to a key-value table.
func CatalogSummaryToTableData(s catalogs.Summary) Data {
	rows := [][]string{
		{"Municipalities", FormatCount(s.Municipalities)},
		{"Municipality aliases", FormatCount(s.MunicipalityAliases)},
		{"Municipality duplicates", FormatCount(s.MunicipalityDuplicates)},
		{"Products", FormatCount(s.Products)},
		{"Product aliases", FormatCount(s.ProductAliases)},
		{"Product duplicates", FormatCount(s.ProductDuplicates)},
		{"Corrections", FormatCount(s.Corrections)},
		{"Chains", FormatCount(s.Chains)},
	}
	if len(s.DanglingMunicipalityAliases) > 0 {
		rows = append(rows, []string{"Dangling municipality aliases", strings.Join(s.DanglingMunicipalityAliases, ", ")})
	}
	if len(s.DanglingProductAliases) > 0 {
		rows = append(rows, []string{"Dangling product aliases", strings.Join(s.DanglingProductAliases, ", ")})
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows:    rows,
	}
}

// ResolutionToTableData lists each strategy evaluated for one label.
func ResolutionToTableData(r resolve.Resolution) Data {
	rows := make([][]string, 0, len(r.Attempts))
	for i, a := range r.Attempts {
		candidate := a.Candidate
		if candidate == "" {
			candidate = "-"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), a.Strategy.String(), candidate, a.Outcome.String()})
	}
	return Data{
		Headers:         []string{"#", "Strategy", "Candidate", "Outcome"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// ManifestToTableData lists the input files of a manifest.
func ManifestToTableData(entries []manifest.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, FormatCount(int(e.Size)), e.ModTime.UTC().Format(time.RFC3339)})
	}
	return Data{
		Headers:         []string{"File", "Size", "Modified"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// FileRow is the per-file view a run prints.
type FileRow struct {
	Name     string
	Stats    reconcile.Stats
	Duration time.Duration
	Err      error
}

// FilesToTableData lists the outcome of every source file of a run.
func FilesToTableData(files []FileRow) Data {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		status := "ok"
		if f.Err != nil {
			status = "skipped"
		}
		rows = append(rows, []string{
			f.Name,
			FormatCount(f.Stats.RowsRead),
			FormatCount(f.Stats.Records),
			FormatCount(f.Stats.RowsDropped),
			FormatCount(f.Stats.UnmatchedMunicipalityRows + f.Stats.UnmatchedProductRows),
			f.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return Data{
		Headers: []string{"File", "Rows", "Records", "Dropped", "Unmatched", "Time", "Status"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignCenter,
		},
	}
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + group(s[1:])
	}
	return group(s)
}

// FormatDecimal formats a currency amount with two decimals and thousands
// separators.
func FormatDecimal(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return fmt.Sprintf("%s%s.%s", sign, group(whole), frac)
}

// FormatBool formats a boolean as yes or no.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
