package resolve

import (
	"strings"

	"github.com/agentstation/vbpmap/pkg/canonical"
)

// StrategyType names a resolution strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the strategy type title-cased with spaces, for display.
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyCorrection looks the key up in the curated correction table.
	StrategyCorrection StrategyType = "correction"
	// StrategyCorrectionAlias follows the alias of a corrected key.
	StrategyCorrectionAlias StrategyType = "correction-alias"
	// StrategyCorrectionSingular tries the singular of a corrected key.
	StrategyCorrectionSingular StrategyType = "correction-singular"
	// StrategyExact uses the key as is.
	StrategyExact StrategyType = "exact"
	// StrategyAlias follows the static alias table.
	StrategyAlias StrategyType = "alias"
	// StrategySingular tries the key without its trailing "s".
	StrategySingular StrategyType = "singular"
)

// Table is a key to key mapping such as an alias or correction table.
type Table interface {
	Lookup(key string) (string, bool)
}

// Strategy proposes one candidate key for an input key.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Candidate returns the key to probe, or false when the strategy does
	// not apply to this input.
	Candidate(key string) (string, bool)
}

type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

type exactStrategy struct{ baseStrategy }

// Exact returns the strategy that probes the input key unchanged.
func Exact() Strategy {
	return &exactStrategy{baseStrategy{StrategyExact, "Matches the canonical key against the catalog"}}
}

func (s *exactStrategy) Candidate(key string) (string, bool) {
	return key, key != ""
}

type tableStrategy struct {
	baseStrategy
	table Table
}

// Alias returns the strategy that follows a static alias table.
func Alias(aliases Table) Strategy {
	return &tableStrategy{
		baseStrategy: baseStrategy{StrategyAlias, "Replaces a known spelling variant with its official key"},
		table:        aliases,
	}
}

// Correction returns the strategy that follows the curated correction table.
func Correction(corrections Table) Strategy {
	return &tableStrategy{
		baseStrategy: baseStrategy{StrategyCorrection, "Replaces an observed label with its curated correction"},
		table:        corrections,
	}
}

func (s *tableStrategy) Candidate(key string) (string, bool) {
	if s.table == nil {
		return "", false
	}
	return s.table.Lookup(key)
}

type singularStrategy struct{ baseStrategy }

// Singular returns the strategy that strips one trailing "s".
func Singular() Strategy {
	return &singularStrategy{baseStrategy{StrategySingular, "Drops a trailing plural marker"}}
}

func (s *singularStrategy) Candidate(key string) (string, bool) {
	singular := canonical.Singular(key)
	return singular, singular != key && singular != ""
}

type correctionAliasStrategy struct {
	baseStrategy
	corrections Table
	aliases     Table
}

// CorrectionAlias returns the strategy that follows the alias of a
// corrected key.
func CorrectionAlias(corrections, aliases Table) Strategy {
	return &correctionAliasStrategy{
		baseStrategy: baseStrategy{StrategyCorrectionAlias, "Follows the alias of a corrected label"},
		corrections:  corrections,
		aliases:      aliases,
	}
}

func (s *correctionAliasStrategy) Candidate(key string) (string, bool) {
	if s.corrections == nil || s.aliases == nil {
		return "", false
	}
	corrected, ok := s.corrections.Lookup(key)
	if !ok {
		return "", false
	}
	return s.aliases.Lookup(corrected)
}

type correctionSingularStrategy struct {
	baseStrategy
	corrections Table
}

// CorrectionSingular returns the strategy that tries the singular of a
// corrected key.
func CorrectionSingular(corrections Table) Strategy {
	return &correctionSingularStrategy{
		baseStrategy: baseStrategy{StrategyCorrectionSingular, "Drops a trailing plural marker from a corrected label"},
		corrections:  corrections,
	}
}

func (s *correctionSingularStrategy) Candidate(key string) (string, bool) {
	if s.corrections == nil {
		return "", false
	}
	corrected, ok := s.corrections.Lookup(key)
	if !ok {
		return "", false
	}
	singular := canonical.Singular(corrected)
	return singular, singular != corrected && singular != ""
}

// ProductStrategies is the product resolution order. Curated corrections
// take precedence over static aliases, and singularization comes last.
func ProductStrategies(corrections, aliases Table) []Strategy {
	return []Strategy{
		Correction(corrections),
		CorrectionAlias(corrections, aliases),
		CorrectionSingular(corrections),
		Exact(),
		Alias(aliases),
		Singular(),
	}
}

// MunicipalityStrategies is the municipality resolution order.
func MunicipalityStrategies(aliases Table) []Strategy {
	return []Strategy{
		Exact(),
		Alias(aliases),
	}
}
