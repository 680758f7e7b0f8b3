package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/vbpmap/pkg/aggregate"
	"github.com/agentstation/vbpmap/pkg/errors"
	"github.com/agentstation/vbpmap/pkg/reconcile"
)

var recordColumns = []string{
	"year INTEGER NOT NULL",
	"municipality_label TEXT",
	"municipality TEXT",
	"code TEXT",
	"region TEXT",
	"meso_region TEXT",
	"product_label TEXT",
	"product TEXT",
	"chain TEXT",
	"sub_chain TEXT",
	"unit TEXT",
	"value TEXT",
	"value_real REAL",
	"area REAL",
	"quantity REAL",
	"slaughter REAL",
	"converted_quantity REAL",
	"origin TEXT",
}

// SQLite writes records and every table of sets into a fresh database at
// path. An existing file is replaced. The value column keeps the exact
// decimal text; value_real is its float approximation for queries.
func SQLite(ctx context.Context, path string, records []reconcile.Record, sets ...*aggregate.Set) (err error) {
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return errors.WrapIO("remove", path, rmErr)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", path, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = writeRecords(ctx, tx, records); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, t := range set.Tables() {
			if err = writeTable(ctx, tx, t); err != nil {
				return errors.WrapIO("write", path, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.WrapIO("commit", path, err)
	}
	return nil
}

func writeRecords(ctx context.Context, tx *sql.Tx, records []reconcile.Record) error {
	if _, err := tx.ExecContext(ctx, `CREATE TABLE "records" (`+strings.Join(recordColumns, ",")+`)`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "records" VALUES (`+placeholders(len(recordColumns))+`)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Year,
			r.MunicipalityLabel,
			r.Municipality.Name,
			r.Municipality.Code,
			r.Municipality.Region,
			r.Municipality.MesoRegion,
			r.ProductLabel,
			r.Product.ShortName,
			r.Product.Chain,
			r.Product.SubChain,
			r.Unit,
			r.Value.String(),
			r.Value.InexactFloat64(),
			r.Area,
			r.Quantity,
			r.Slaughter,
			r.ConvertedQuantity,
			r.Origin,
		); err != nil {
			return err
		}
	}
	for _, idx := range []string{
		`CREATE INDEX idx_records_year ON records(year)`,
		`CREATE INDEX idx_records_code ON records(code)`,
		`CREATE INDEX idx_records_product ON records(product)`,
	} {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(ctx context.Context, tx *sql.Tx, t aggregate.Table) error {
	defs := make([]string, 0, len(t.Dimensions)+5)
	defs = append(defs, `"position" INTEGER NOT NULL`)
	for _, d := range t.Dimensions {
		typ := "TEXT"
		if d == aggregate.DimYear {
			typ = "INTEGER"
		}
		defs = append(defs, fmt.Sprintf("%q %s", d, typ))
	}
	defs = append(defs, `"value" REAL`, `"quantity" REAL`, `"area" REAL`, `"count" INTEGER`)

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %q (%s)", t.Name, strings.Join(defs, ","))); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q VALUES (%s)", t.Name, placeholders(len(defs))))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range t.Rows {
		args := make([]any, 0, len(defs))
		args = append(args, i)
		for j, d := range t.Dimensions {
			args = append(args, keyValue(d, r.Key(j)))
		}
		args = append(args, r.Value.InexactFloat64(), r.Quantity, r.Area, r.Count)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}
