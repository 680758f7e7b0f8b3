// Package export writes the output of a pipeline run: the dashboard JSON
// files, diagnostics, the manifest, an optional record dump and an optional
// SQLite database.
package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/agentstation/vbpmap/pkg/aggregate"
	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/pipeline"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Output file names.
const (
	AggregatedFile  = "aggregated.json"
	DetailedFile    = "detailed.json"
	ProductMapFile  = "produto_map.json"
	GeoMapFile      = "geo_map.json"
	DiagnosticsFile = "diagnostics.json"
	ManifestFile    = "manifest.json"
	GeoJSONFile     = "municipios.geojson"
	RecordsBase     = "records"
)

// Writer writes run output into a directory.
type Writer struct {
	Dir  string
	opts Options
	now  func() time.Time
}

// NewWriter creates a writer for dir.
func NewWriter(dir string, opts ...Option) *Writer {
	return &Writer{Dir: dir, opts: Defaults().Apply(opts...), now: time.Now}
}

func (w *Writer) logger() *zerolog.Logger {
	if w.opts.logger != nil {
		return w.opts.logger
	}
	return logging.Default()
}

// Write writes every output file for res and returns the paths written.
func (w *Writer) Write(res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(w.Dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", w.Dir, err)
	}
	at := w.now().UTC()

	files := []struct {
		name string
		doc  any
	}{
		{AggregatedFile, aggregatedDoc(res.Aggregates, res.Overview, res.Fingerprint, at)},
		{DetailedFile, detailedDoc(res.Detailed)},
		{ProductMapFile, productMap(aggregate.ProductTree(res.Records))},
		{GeoMapFile, geoMap(aggregate.GeoTree(res.Records))},
		{DiagnosticsFile, NewDiagnosticsReport(res, at)},
		{ManifestFile, manifest.Document{GeneratedAt: at, Fingerprint: res.Fingerprint, Files: res.Manifest, Reference: res.Reference}},
	}

	written := make([]string, 0, len(files)+1)
	for _, f := range files {
		path := filepath.Join(w.Dir, f.name)
		if err := writeJSON(path, f.doc); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if w.opts.records != FormatNone {
		path, err := w.writeRecords(res.Records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	w.logger().Info().
		Str("dir", w.Dir).
		Int("files", len(written)).
		Msg("Wrote output files")
	return written, nil
}

func (w *Writer) writeRecords(records []reconcile.Record) (string, error) {
	views := make([]RecordView, len(records))
	for i, r := range records {
		views[i] = NewRecordView(r)
	}

	path := filepath.Join(w.Dir, RecordsBase+"."+w.opts.records.String())
	switch w.opts.records {
	case FormatYAML:
		data, err := yaml.Marshal(views)
		if err != nil {
			return "", errors.WrapParse("yaml", path, err)
		}
		return path, atomicWrite(path, data)
	case FormatJSON:
		return path, writeJSON(path, views)
	default:
		return "", &errors.ValidationError{Field: "records", Value: w.opts.records, Message: "unsupported record format"}
	}
}

// RecordView is the flat form of a record in dumps.
type RecordView struct {
	Year              int     `json:"ano" yaml:"ano"`
	MunicipalityLabel string  `json:"municipio" yaml:"municipio"`
	Municipality      string  `json:"municipio_oficial" yaml:"municipio_oficial"`
	Code              string  `json:"cod_ibge" yaml:"cod_ibge"`
	Region            string  `json:"regional_idr" yaml:"regional_idr"`
	MesoRegion        string  `json:"meso_idr" yaml:"meso_idr"`
	ProductLabel      string  `json:"produto" yaml:"produto"`
	Product           string  `json:"produto_conciso" yaml:"produto_conciso"`
	Chain             string  `json:"cadeia" yaml:"cadeia"`
	SubChain          string  `json:"subcadeia" yaml:"subcadeia"`
	Unit              string  `json:"unidade" yaml:"unidade"`
	Value             string  `json:"valor" yaml:"valor"`
	Area              float64 `json:"area" yaml:"area"`
	Quantity          float64 `json:"producao" yaml:"producao"`
	Slaughter         float64 `json:"abate" yaml:"abate"`
	ConvertedQuantity float64 `json:"producao_ton" yaml:"producao_ton"`
	Origin            string  `json:"arquivo_origem" yaml:"arquivo_origem"`
}

// NewRecordView flattens r. The value keeps its exact decimal form.
func NewRecordView(r reconcile.Record) RecordView {
	return RecordView{
		Year:              r.Year,
		MunicipalityLabel: r.MunicipalityLabel,
		Municipality:      r.Municipality.Name,
		Code:              r.Municipality.Code,
		Region:            r.Municipality.Region,
		MesoRegion:        r.Municipality.MesoRegion,
		ProductLabel:      r.ProductLabel,
		Product:           r.Product.ShortName,
		Chain:             r.Product.Chain,
		SubChain:          r.Product.SubChain,
		Unit:              r.Unit,
		Value:             r.Value.String(),
		Area:              r.Area,
		Quantity:          r.Quantity,
		Slaughter:         r.Slaughter,
		ConvertedQuantity: r.ConvertedQuantity,
		Origin:            r.Origin,
	}
}

// SkippedFile describes a source file that contributed no records.
type SkippedFile struct {
	File    string   `json:"file" yaml:"file"`
	Reason  string   `json:"reason" yaml:"reason"`
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Error   string   `json:"error" yaml:"error"`
}

// DiagnosticsReport is the content of diagnostics.json.
type DiagnosticsReport struct {
	GeneratedAt             time.Time         `json:"generated_at" yaml:"generated_at"`
	Fingerprint             string            `json:"fingerprint" yaml:"fingerprint"`
	UnmatchedMunicipalities []string          `json:"unmatched_municipalities" yaml:"unmatched_municipalities"`
	UnmatchedProducts       []string          `json:"unmatched_products" yaml:"unmatched_products"`
	MunicipalityRows        []reconcile.Label `json:"municipality_rows" yaml:"municipality_rows"`
	ProductRows             []reconcile.Label `json:"product_rows" yaml:"product_rows"`
	Skipped                 []SkippedFile     `json:"skipped_files" yaml:"skipped_files"`
	Stats                   pipeline.Stats    `json:"stats" yaml:"stats"`
}

// NewDiagnosticsReport collects the diagnostics of a run.
func NewDiagnosticsReport(res *pipeline.Result, at time.Time) DiagnosticsReport {
	report := DiagnosticsReport{
		GeneratedAt: at,
		Fingerprint: res.Fingerprint,
		Skipped:     []SkippedFile{},
		Stats:       res.Stats,
	}
	d := res.Diagnostics
	if d == nil {
		d = reconcile.NewDiagnostics()
	}
	r := d.Report()
	report.UnmatchedMunicipalities = nonNil(r.UnmatchedMunicipalities)
	report.UnmatchedProducts = nonNil(r.UnmatchedProducts)
	report.MunicipalityRows = nonNil(r.MunicipalityRows)
	report.ProductRows = nonNil(r.ProductRows)

	for _, err := range res.Skipped {
		s := SkippedFile{Error: err.Error()}
		var fe *errors.FileError
		if errors.As(err, &fe) {
			s.File, s.Reason, s.Missing = fe.File, fe.Reason, fe.Missing
		}
		report.Skipped = append(report.Skipped, s)
	}
	return report
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return atomicWrite(path, buf.Bytes())
}

// atomicWrite replaces path with data through a temporary file in the
// same directory, so a reader never sees a partial file.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}
