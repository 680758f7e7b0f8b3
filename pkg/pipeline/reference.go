package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/constants"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/logging"
	"github.com/agentstation/vbpmap/pkg/manifest"
	"github.com/agentstation/vbpmap/pkg/tabular"
)

// ReferencePaths locates the reference catalogs.
type ReferencePaths struct {
	Municipalities   string // municipality registry workbook or CSV
	Products         string // product taxonomy workbook
	ProductsSheet    string // taxonomy sheet; empty means the first sheet
	CorrectionsSheet string // headerless correction sheet in the Products workbook; optional
	Dictionary       string // user alias dictionary merged over the defaults; optional
}

// Files returns every configured file a run depends on besides its
// sources.
func (r ReferencePaths) Files() []string {
	files := make([]string, 0, 3)
	for _, f := range []string{r.Municipalities, r.Products, r.Dictionary} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// DefaultReferencePaths returns the reference locations inside dataDir.
func DefaultReferencePaths(dataDir string) ReferencePaths {
	return ReferencePaths{
		Municipalities:   filepath.Join(dataDir, constants.DefaultMunicipalitiesFile),
		Products:         filepath.Join(dataDir, constants.DefaultProductsFile),
		ProductsSheet:    constants.DefaultProductsSheet,
		CorrectionsSheet: constants.DefaultCorrectionsSheet,
	}
}

// ReadReference reads the reference tables. Every failure is a
// *errors.ConfigError: without its catalogs a run cannot proceed.
func ReadReference(ctx context.Context, paths ReferencePaths) (catalogs.Reference, error) {
	logger := logging.FromContext(ctx)
	var refs catalogs.Reference

	if err := ctx.Err(); err != nil {
		return refs, errors.Join(errors.ErrCanceled, err)
	}

	var err error
	if refs.Municipalities, err = readRequired("municipalities", paths.Municipalities, tabular.Options{}); err != nil {
		return refs, err
	}
	if refs.Products, err = readRequired("products", paths.Products, tabular.Options{Sheet: paths.ProductsSheet}); err != nil {
		return refs, err
	}

	if paths.CorrectionsSheet == "" {
		return refs, nil
	}
	sheets, err := tabular.Sheets(paths.Products)
	if err != nil {
		return refs, errors.NewConfigError("corrections", "cannot list sheets of "+paths.Products, err)
	}
	if !slices.Contains(sheets, paths.CorrectionsSheet) {
		logger.Warn().
			Str("file", filepath.Base(paths.Products)).
			Str("sheet", paths.CorrectionsSheet).
			Msg("Correction sheet not found, continuing without corrections")
		return refs, nil
	}
	refs.Corrections, err = tabular.ReadFile(paths.Products, tabular.Options{Sheet: paths.CorrectionsSheet, NoHeader: true})
	if err != nil {
		return refs, errors.NewConfigError("corrections", "cannot read "+paths.Products, err)
	}
	if len(refs.Corrections.Header) == 1 {
		logger.Warn().
			Str("file", filepath.Base(paths.Products)).
			Str("sheet", paths.CorrectionsSheet).
			Int("columns", len(refs.Corrections.Header)).
			Msg("Correction sheet needs a raw and a corrected column, continuing without corrections")
		refs.Corrections = tabular.Table{}
	}
	return refs, nil
}

func readRequired(component, path string, opts tabular.Options) (tabular.Table, error) {
	if path == "" {
		return tabular.Table{}, errors.NewConfigError(component, "no reference file configured", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return tabular.Table{}, errors.NewConfigError(component, "reference file not found", errors.WrapIO("stat", path, err))
	}
	t, err := tabular.ReadFile(path, opts)
	if err != nil {
		return tabular.Table{}, errors.NewConfigError(component, "cannot read "+path, err)
	}
	return t, nil
}

// LoadReference reads the reference tables and builds the catalogs. The
// catalogs record the manifest entries of the files they were built from.
func (p *Pipeline) LoadReference(ctx context.Context, paths ReferencePaths) (*catalogs.Catalogs, error) {
	logger := p.logger(ctx)

	refs, err := ReadReference(ctx, paths)
	if err != nil {
		return nil, err
	}
	cat, err := catalogs.Load(refs, p.opts.Dictionary)
	if err != nil {
		return nil, err
	}
	if cat.Sources, err = manifest.Build(paths.Files()); err != nil {
		return nil, errors.NewConfigError("reference", "cannot stat reference files", err)
	}

	s := cat.Summary()
	event := logger.Info().
		Int("municipalities", s.Municipalities).
		Int("products", s.Products).
		Int("corrections", s.Corrections).
		Int("chains", s.Chains)
	if s.MunicipalityDuplicates+s.ProductDuplicates > 0 {
		event = event.Int("duplicates", s.MunicipalityDuplicates+s.ProductDuplicates)
	}
	event.Msg("Loaded reference catalogs")

	if n := len(s.DanglingMunicipalityAliases) + len(s.DanglingProductAliases); n > 0 {
		logger.Warn().
			Strs("municipality_aliases", s.DanglingMunicipalityAliases).
			Strs("product_aliases", s.DanglingProductAliases).
			Msg("Aliases point at keys missing from the catalogs")
	}
	return cat, nil
}
