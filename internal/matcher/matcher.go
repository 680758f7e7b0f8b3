// Package matcher selects source files by name using glob or regex patterns.
// Patterns are compiled once; a Selector combines include and exclude sets
// the way the pipeline's data directory scan needs them.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches a single compiled pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// MatchAll returns the inputs that match, in input order.
	MatchAll(inputs ...string) []string
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// New creates a new Matcher with the specified pattern and type.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}
	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return m, nil
}

// MustNew creates a new Matcher and panics if there's an error.
func MustNew(patternType PatternType, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if _, err := filepath.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
	case Regex:
		pattern := m.pattern
		if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^" + pattern
			}
			if !strings.HasSuffix(pattern, "$") {
				pattern += "$"
			}
		}
		if opts.CaseInsensitive && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		matched, _ := filepath.Match(m.globPattern, input)
		return matched
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// MatchAll returns the inputs that match, in input order.
func (m *matcher) MatchAll(inputs ...string) []string {
	results := make([]string, 0)
	for _, input := range inputs {
		if m.Match(input) {
			results = append(results, input)
		}
	}
	return results
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType attempts to detect if a pattern is glob or regex.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches when any of its patterns matches.
type Set struct {
	matchers []Matcher
}

// NewSet compiles every pattern with the same type and options.
// Blank patterns are ignored.
func NewSet(patterns []string, patternType PatternType, opts ...*Options) (*Set, error) {
	s := &Set{matchers: make([]Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		m, err := New(patternType, pattern, opts...)
		if err != nil {
			return nil, err
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// Match returns true if any pattern matches.
func (s *Set) Match(input string) bool {
	for _, m := range s.matchers {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (s *Set) Len() int {
	return len(s.matchers)
}

// Selector picks names matched by Include and not matched by Exclude.
// Exclusion is case-insensitive so a renamed taxonomy workbook stays out.
type Selector struct {
	include *Set
	exclude *Set
}

// NewSelector compiles include and exclude pattern lists (Auto-detected).
func NewSelector(include, exclude []string) (*Selector, error) {
	inc, err := NewSet(include, Auto)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := NewSet(exclude, Auto, &Options{CaseInsensitive: true})
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Selector{include: inc, exclude: exc}, nil
}

// Selected reports whether a single base name is selected.
// An empty include set selects everything.
func (s *Selector) Selected(name string) bool {
	if s.exclude.Match(name) {
		return false
	}
	return s.include.Len() == 0 || s.include.Match(name)
}

// Select returns the selected names, deduplicated and sorted.
func (s *Selector) Select(names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup || !s.Selected(name) {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
