// Package selector defines logical UI targets and their ordered candidate
// selector chains. Each chain runs from most-specific to most-generic, so
// declaration order is part of the contract: the locator tries candidates
// strictly in order and stops at the first hit, which is what keeps the
// automation alive across markup drift.
package selector

import "strings"

// Strategy is how a candidate selector string is evaluated.
type Strategy int

const (
	// StrategyCSS evaluates the candidate as a CSS query.
	StrategyCSS Strategy = iota
	// StrategyXPath evaluates the candidate as an XPath expression.
	StrategyXPath
)

func (s Strategy) String() string {
	if s == StrategyXPath {
		return "xpath"
	}
	return "css"
}

// StrategyFor infers the evaluation strategy from the candidate's syntax:
// path expressions (leading "/", "//" or ".//") are XPath, everything else
// is a CSS query.
func StrategyFor(sel string) Strategy {
	if strings.HasPrefix(sel, "//") || strings.HasPrefix(sel, ".//") || strings.HasPrefix(sel, "/") {
		return StrategyXPath
	}
	return StrategyCSS
}

// Set maps a logical target name to its ordered candidate selectors.
// It is static configuration, never mutated at runtime.
type Set map[string][]string

// Candidates returns the ordered selector chain for a logical target,
// or nil if the target is unknown.
func (s Set) Candidates(name string) []string {
	return s[name]
}

// Has reports whether the set defines the given target.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Merge returns a copy of s with entries from override replacing same-named
// targets. Targets only present in override are added.
func (s Set) Merge(override Set) Set {
	merged := make(Set, len(s)+len(override))
	for name, chain := range s {
		merged[name] = chain
	}
	for name, chain := range override {
		merged[name] = chain
	}
	return merged
}
