package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/agentstation/vbpmap/pkg/catalogs"
	"github.com/agentstation/vbpmap/pkg/errors"
)

// OptimizeGeoJSON copies a municipality FeatureCollection from in to out
// with every coordinate rounded to precision decimals and each feature's
// CodIbge property zero padded to seven digits. Other members are kept.
func OptimizeGeoJSON(in, out string, precision int) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return errors.WrapIO("read", in, err)
	}
	optimized, err := optimizeGeoJSON(data, precision)
	if err != nil {
		return errors.WrapParse("geojson", in, err)
	}
	return atomicWrite(out, optimized)
}

func optimizeGeoJSON(data []byte, precision int) ([]byte, error) {
	if precision < 0 {
		return nil, fmt.Errorf("negative precision %d", precision)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	features, ok := doc["features"].([]any)
	if !ok {
		return nil, fmt.Errorf("not a FeatureCollection: no features array")
	}

	for _, f := range features {
		feature, ok := f.(map[string]any)
		if !ok {
			continue
		}
		if geometry, ok := feature["geometry"].(map[string]any); ok {
			if coords, ok := geometry["coordinates"]; ok {
				geometry["coordinates"] = roundCoordinates(coords, precision)
			}
		}
		if props, ok := feature["properties"].(map[string]any); ok {
			if code, ok := props["CodIbge"]; ok {
				props["CodIbge"] = padCode(code)
			}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// roundCoordinates walks nested coordinate arrays of any depth.
func roundCoordinates(v any, precision int) any {
	switch c := v.(type) {
	case []any:
		for i := range c {
			c[i] = roundCoordinates(c[i], precision)
		}
		return c
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return c
		}
		p := math.Pow10(precision)
		return math.Round(f*p) / p
	default:
		return v
	}
}

func padCode(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case json.Number:
		return catalogs.PadCode(c.String())
	case string:
		return catalogs.PadCode(c)
	case float64:
		return catalogs.PadCode(strconv.FormatFloat(c, 'f', -1, 64))
	default:
		return catalogs.PadCode(fmt.Sprint(c))
	}
}
