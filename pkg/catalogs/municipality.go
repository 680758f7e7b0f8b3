package catalogs

import (
	"strconv"
	"strings"

	"github.com/agentstation/vbpmap/pkg/constants"
)

// Municipality is one entry of the official municipality registry.
type Municipality struct {
	Key        string `json:"-" yaml:"-"`
	Name       string `json:"name" yaml:"name"`
	Code       string `json:"code" yaml:"code"` // IBGE code, 7 digits
	Region     string `json:"region" yaml:"region"`
	RegionCode string `json:"region_code,omitempty" yaml:"region_code,omitempty"`
	MesoRegion string `json:"meso_region" yaml:"meso_region"`
	Matched    bool   `json:"matched" yaml:"matched"`
}

// UnmatchedMunicipality is the sentinel for a label that did not resolve.
// It keeps the raw label as its name and has no code.
func UnmatchedMunicipality(label string) Municipality {
	return Municipality{
		Name:       strings.TrimSpace(label),
		Region:     constants.UnmatchedRegion,
		MesoRegion: constants.UnmatchedRegion,
	}
}

// sortKey orders duplicate candidates.
func (m Municipality) sortKey() (string, string) {
	return m.Key, m.Name
}

// PadCode normalizes an IBGE code to constants.CodeWidth digits.
// Spreadsheet cells often carry codes as floats ("4101002.0"); those are
// made integral first. Non-numeric codes are returned trimmed.
func PadCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if strings.ContainsAny(code, ".eE") {
		if f, err := strconv.ParseFloat(code, 64); err == nil && f >= 0 && f == float64(int64(f)) {
			code = strconv.FormatInt(int64(f), 10)
		}
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	if len(code) < constants.CodeWidth {
		code = strings.Repeat("0", constants.CodeWidth-len(code)) + code
	}
	return code
}
