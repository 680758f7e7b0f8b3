package aggregate

import (
	"strconv"

	"github.com/agentstation/vbpmap/pkg/reconcile"
)

// Dimension names used by the aggregate tables.
const (
	DimYear         = "year"
	DimChain        = "chain"
	DimSubChain     = "sub_chain"
	DimProduct      = "product"
	DimRegion       = "region"
	DimMesoRegion   = "meso_region"
	DimCode         = "code"
	DimMunicipality = "municipality"
)

// dimension extracts one grouping key from a record.
type dimension struct {
	name string
	get  func(reconcile.Record) string
}

var (
	year         = dimension{DimYear, func(r reconcile.Record) string { return strconv.Itoa(r.Year) }}
	chain        = dimension{DimChain, func(r reconcile.Record) string { return r.Product.Chain }}
	subChain     = dimension{DimSubChain, func(r reconcile.Record) string { return r.Product.SubChain }}
	product      = dimension{DimProduct, func(r reconcile.Record) string { return r.Product.ShortName }}
	region       = dimension{DimRegion, func(r reconcile.Record) string { return r.Municipality.Region }}
	mesoRegion   = dimension{DimMesoRegion, func(r reconcile.Record) string { return r.Municipality.MesoRegion }}
	code         = dimension{DimCode, func(r reconcile.Record) string { return r.Municipality.Code }}
	municipality = dimension{DimMunicipality, func(r reconcile.Record) string { return r.Municipality.Name }}
)
