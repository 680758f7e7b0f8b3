package run

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/agentstation/vbpmap/internal/cmd/output"
	"github.com/agentstation/vbpmap/internal/cmd/table"
	"github.com/agentstation/vbpmap/pkg/pipeline"
)

// Report is what the run command prints.
type Report struct {
	Summary     string            `json:"summary" yaml:"summary"`
	Fingerprint string            `json:"fingerprint" yaml:"fingerprint"`
	Stats       pipeline.Stats    `json:"stats" yaml:"stats"`
	Files       []FileReport      `json:"files" yaml:"files"`
	Value       decimal.Decimal   `json:"value" yaml:"value"`
	Outputs     []string          `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Metadata    pipeline.Metadata `json:"metadata" yaml:"metadata"`

	rows []table.FileRow
}

// FileReport is the outcome of one source file.
type FileReport struct {
	Name    string `json:"name" yaml:"name"`
	Rows    int    `json:"rows" yaml:"rows"`
	Records int    `json:"records" yaml:"records"`
	Dropped int    `json:"dropped" yaml:"dropped"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReport(res *pipeline.Result) *Report {
	r := &Report{
		Summary:     res.Summary(),
		Fingerprint: res.Fingerprint,
		Stats:       res.Stats,
		Value:       res.Overview.Value,
		Metadata:    res.Metadata,
		Files:       make([]FileReport, 0, len(res.Files)),
		rows:        make([]table.FileRow, 0, len(res.Files)),
	}
	for _, f := range res.Files {
		fr := FileReport{
			Name:    f.Name,
			Rows:    f.Stats.RowsRead,
			Records: f.Stats.Records,
			Dropped: f.Stats.RowsDropped,
		}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		r.Files = append(r.Files, fr)
		r.rows = append(r.rows, table.FileRow{Name: f.Name, Stats: f.Stats, Duration: f.Duration, Err: f.Err})
	}
	return r
}

func printReport(w io.Writer, format output.Format, r *Report) error {
	if format != output.FormatTable && format != "" {
		return output.NewFormatter(format).Format(w, r)
	}
	if err := output.NewFormatter(output.FormatTable).Format(w, table.FilesToTableData(r.rows)); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", r.Summary)
	fmt.Fprintf(w, "Total value: %s\n", table.FormatDecimal(r.Value))
	for _, path := range r.Outputs {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
	return nil
}
