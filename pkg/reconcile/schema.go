package reconcile

import (
	"github.com/agentstation/vbpmap/pkg/canonical"
	"github.com/agentstation/vbpmap/pkg/dictionary"
)

// Schema is the column layout of one source table after header aliasing.
// Absent columns are -1.
type Schema struct {
	Year         int
	Season       int
	Municipality int
	Product      int
	Region       int
	Unit         int
	Area         int
	Quantity     int
	Slaughter    int
	Value        int

	// Unmapped lists headers with no alias, in table order.
	Unmapped []string
}

// DetectSchema maps headers to fields and checks the capability every
// reconcilable table must have: a year or season column, a municipality
// column and a product column. When the check fails the returned slice
// names the missing capabilities.
func DetectSchema(header []string, dict *dictionary.Dictionary) (Schema, []string) {
	s := Schema{
		Year: -1, Season: -1, Municipality: -1, Product: -1, Region: -1,
		Unit: -1, Area: -1, Quantity: -1, Slaughter: -1, Value: -1,
	}
	slots := map[string]*int{
		dictionary.FieldYear:         &s.Year,
		dictionary.FieldSeason:       &s.Season,
		dictionary.FieldMunicipality: &s.Municipality,
		dictionary.FieldProduct:      &s.Product,
		dictionary.FieldRegion:       &s.Region,
		dictionary.FieldUnit:         &s.Unit,
		dictionary.FieldArea:         &s.Area,
		dictionary.FieldQuantity:     &s.Quantity,
		dictionary.FieldSlaughter:    &s.Slaughter,
		dictionary.FieldValue:        &s.Value,
	}

	for i, h := range header {
		field, ok := dict.Field(canonical.Column(h))
		if !ok {
			if h != "" {
				s.Unmapped = append(s.Unmapped, h)
			}
			continue
		}
		// first matching header wins
		if slot := slots[field]; *slot < 0 {
			*slot = i
		}
	}

	var missing []string
	if s.Year < 0 && s.Season < 0 {
		missing = append(missing, dictionary.FieldYear+"|"+dictionary.FieldSeason)
	}
	if s.Municipality < 0 {
		missing = append(missing, dictionary.FieldMunicipality)
	}
	if s.Product < 0 {
		missing = append(missing, dictionary.FieldProduct)
	}
	return s, missing
}

// YearColumn returns the year column, preferring an explicit year over a
// season column.
func (s Schema) YearColumn() int {
	if s.Year >= 0 {
		return s.Year
	}
	return s.Season
}
