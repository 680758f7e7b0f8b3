// Package resolve maps canonical keys onto catalog keys through an explicit,
// ordered list of strategies.
//
// Each strategy proposes at most one candidate key; the first candidate
// present in the catalog wins. Every step is recorded as an Attempt so the
// precedence between corrections, aliases and singularization can be
// inspected and tested on its own.
package resolve

import "fmt"

// Outcome is the result of one attempt.
type Outcome int

const (
	// Skipped means the strategy had no candidate for the input.
	Skipped Outcome = iota
	// Missed means the candidate is not in the catalog.
	Missed
	// Matched means the candidate is in the catalog.
	Matched
)

// String returns a string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Missed:
		return "missed"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Attempt records one strategy evaluation.
type Attempt struct {
	Strategy  StrategyType `json:"strategy" yaml:"strategy"`
	Candidate string       `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Outcome   Outcome      `json:"outcome" yaml:"outcome"`
}

// Resolution is the result of resolving one key.
type Resolution struct {
	Input    string       `json:"input" yaml:"input"`
	Key      string       `json:"key" yaml:"key"` // catalog key when matched, input otherwise
	Strategy StrategyType `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Matched  bool         `json:"matched" yaml:"matched"`
	Attempts []Attempt    `json:"attempts" yaml:"attempts"`
}

// Index reports whether a key exists in a catalog.
type Index interface {
	Has(key string) bool
}

// Resolver evaluates strategies in order against one catalog.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	index      Index
	strategies []Strategy
}

// New creates a resolver for index with strategies evaluated in order.
func New(index Index, strategies ...Strategy) *Resolver {
	return &Resolver{index: index, strategies: strategies}
}

// Strategies returns the strategy order.
func (r *Resolver) Strategies() []StrategyType {
	out := make([]StrategyType, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Type()
	}
	return out
}

// Resolve runs the strategies until one matches.
func (r *Resolver) Resolve(key string) Resolution {
	res := Resolution{
		Input:    key,
		Key:      key,
		Attempts: make([]Attempt, 0, len(r.strategies)),
	}
	if key == "" {
		return res
	}

	for _, s := range r.strategies {
		candidate, ok := s.Candidate(key)
		if !ok {
			res.Attempts = append(res.Attempts, Attempt{Strategy: s.Type(), Outcome: Skipped})
			continue
		}
		if !r.index.Has(candidate) {
			res.Attempts = append(res.Attempts, Attempt{Strategy: s.Type(), Candidate: candidate, Outcome: Missed})
			continue
		}
		res.Attempts = append(res.Attempts, Attempt{Strategy: s.Type(), Candidate: candidate, Outcome: Matched})
		res.Key = candidate
		res.Strategy = s.Type()
		res.Matched = true
		return res
	}
	return res
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "skipped":
		*o = Skipped
	case "missed":
		*o = Missed
	case "matched":
		*o = Matched
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}
