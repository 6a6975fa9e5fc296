package archimate

import "strings"

// RelationKind separates containment relationships from plain associations.
type RelationKind int

const (
	// Associative relationships render as visible edges.
	Associative RelationKind = iota
	// Structural relationships imply containment of the target by the source.
	Structural
)

func (k RelationKind) String() string {
	if k == Structural {
		return "structural"
	}
	return "associative"
}

var structuralTypes = map[string]struct{}{
	"composition": {},
	"aggregation": {},
	"assignment":  {},
	"nesting":     {},
	"composed of": {},
	"assigned to": {},
}

// Classify labels a relationship type. Matching is exact after lowercasing and
// trimming; anything unrecognized is Associative.
func Classify(relType string) RelationKind {
	if _, ok := structuralTypes[strings.ToLower(strings.TrimSpace(relType))]; ok {
		return Structural
	}
	return Associative
}

// IsStructural is shorthand for Classify(relType) == Structural.
func IsStructural(relType string) bool { return Classify(relType) == Structural }
