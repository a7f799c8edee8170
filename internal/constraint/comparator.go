package constraint

import "graphd/internal/iterator/glob"

// Comparator evaluates a string constraint's pattern against a stored
// byte field. spec.md §1 lists the comparator as an external
// collaborator with a defined interface; DefaultComparator wires in the
// octet glob matcher this repo implements (internal/iterator/glob) so
// the matcher is independently testable against a real implementation.
type Comparator interface {
	MatchString(pattern, value string) bool
}

// DefaultComparator is the octet comparator: glob.Match applied
// byte-for-byte.
type DefaultComparator struct{}

func (DefaultComparator) MatchString(pattern, value string) bool {
	return glob.Match(pattern, value)
}
