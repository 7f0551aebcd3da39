package interact

import "strings"

// matchKind classifies how a dropdown option matched the wanted value.
type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchSubstring
)

func (k matchKind) String() string {
	switch k {
	case matchExact:
		return "exact"
	case matchSubstring:
		return "substring"
	default:
		return "none"
	}
}

// matchOption picks the option to select for value. Exact whole-text match
// (case sensitive) always beats a substring match, regardless of position in
// the list; substring is only consulted when no option matches exactly.
func matchOption(options []string, value string) (int, matchKind) {
	for i, opt := range options {
		if opt == value {
			return i, matchExact
		}
	}
	for i, opt := range options {
		if strings.Contains(opt, value) {
			return i, matchSubstring
		}
	}
	return -1, matchNone
}
