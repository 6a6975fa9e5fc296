package planner

import (
	"errors"

	"github.com/matzehuels/archlayout/pkg/archimate"
)

var (
	// ErrAlreadyParented is returned by [Hierarchy.Assign] when the child
	// already has a parent. The first assignment always wins.
	ErrAlreadyParented = errors.New("child already has a parent")

	// ErrCycle is returned by [Hierarchy.Assign] when the proposed parent is the
	// child itself or one of its descendants.
	ErrCycle = errors.New("assignment would create a containment cycle")
)

// Hierarchy is the containment map: child id to parent id, at most one parent
// per child, never cyclic. The zero value is not usable; use NewHierarchy.
type Hierarchy struct {
	parent map[string]string
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{parent: make(map[string]string)}
}

// Parent returns the parent of id, if any.
func (h *Hierarchy) Parent(id string) (string, bool) {
	p, ok := h.parent[id]
	return p, ok
}

// Len returns the number of parented children.
func (h *Hierarchy) Len() int { return len(h.parent) }

// Assign makes parent the container of child. It refuses to re-parent a child
// and refuses any assignment that would make child its own ancestor.
func (h *Hierarchy) Assign(child, parent string) error {
	if _, ok := h.parent[child]; ok {
		return ErrAlreadyParented
	}
	if h.isAncestorOrSelf(child, parent) {
		return ErrCycle
	}
	h.parent[child] = parent
	return nil
}

// isAncestorOrSelf walks up from node and reports whether candidate is on the
// chain. The visited set bounds the walk even if the map were corrupted.
func (h *Hierarchy) isAncestorOrSelf(candidate, node string) bool {
	visited := make(map[string]bool)
	for cur := node; ; {
		if cur == candidate {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		next, ok := h.parent[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// ConflictReason explains why a parent link was not applied.
type ConflictReason string

const (
	// ConflictAlreadyParented: the target was parented by an earlier link.
	ConflictAlreadyParented ConflictReason = "already_parented"
	// ConflictCycle: applying the link would create a containment cycle.
	ConflictCycle ConflictReason = "cycle"
)

// Conflict records a structural relationship that was ignored. Conflicts are
// diagnostics only; they never fail a layout.
type Conflict struct {
	Index        int // position in the input relationship list
	Relationship archimate.Relationship
	Reason       ConflictReason
}

// Structure is the outcome of hierarchy building.
type Structure struct {
	Hierarchy *Hierarchy
	// Consumed holds the input indexes of relationships turned into
	// containment. They are excluded from visible edges.
	Consumed  map[int]bool
	Conflicts []Conflict
	// Adopted counts parent links taken from the elements themselves.
	Adopted int
}

// BuildHierarchy derives the containment map.
//
// Explicit parent links on elements are applied first, when the parent is a
// known container-capable element other than a layer container; layer
// membership is always recomputed. Structural relationships follow, in input
// order. A relationship is applied only when both endpoints are known and the
// source type is container-capable. A target that already has a parent keeps
// it (first wins), and an assignment that would create a cycle is rejected.
// Rejected relationships are not consumed, so they stay visible as ordinary
// edges.
func BuildHierarchy(elements []archimate.Element, rels []archimate.Relationship) Structure {
	s := Structure{
		Hierarchy: NewHierarchy(),
		Consumed:  make(map[int]bool),
	}

	byID := make(map[string]archimate.Element, len(elements))
	for _, e := range elements {
		byID[e.ID] = e
	}

	for _, e := range elements {
		if e.ParentID == "" || IsLayerGroupID(e.ParentID) {
			continue
		}
		parent, ok := byID[e.ParentID]
		if !ok || !parent.IsContainer() {
			continue
		}
		if s.Hierarchy.Assign(e.ID, parent.ID) == nil {
			s.Adopted++
		}
	}

	for i, r := range rels {
		if r.Kind() != archimate.Structural {
			continue
		}
		src, ok := byID[r.Source]
		if !ok {
			continue
		}
		if _, ok := byID[r.Target]; !ok {
			continue
		}
		if !archimate.IsContainerType(src.Type) {
			continue
		}

		switch err := s.Hierarchy.Assign(r.Target, r.Source); {
		case err == nil:
			s.Consumed[i] = true
		case errors.Is(err, ErrAlreadyParented):
			s.Conflicts = append(s.Conflicts, Conflict{Index: i, Relationship: r, Reason: ConflictAlreadyParented})
		case errors.Is(err, ErrCycle):
			s.Conflicts = append(s.Conflicts, Conflict{Index: i, Relationship: r, Reason: ConflictCycle})
		}
	}

	return s
}
