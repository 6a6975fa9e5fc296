package planner

import (
	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/engine"
)

// ExtentParent tells nested-rendering frameworks to keep a child inside its
// parent's bounds.
const ExtentParent = "parent"

// PositionedNode is an element with its computed placement. Position is
// relative to the parent's origin; ParentID is empty for top-level nodes.
type PositionedNode struct {
	archimate.Element `yaml:",inline"`

	Extent string `json:"extent,omitempty" yaml:"extent,omitempty"`
}

// Flatten walks a positioned engine graph in pre-order and returns one record
// per known element. elements maps ids to the (annotated) elements of the
// layout; engine nodes without an element are skipped and their children are
// attached to the nearest emitted ancestor with offsets carried over.
//
// Elements the engine did not return are appended at the origin of their
// hierarchy parent so that no node is lost.
func Flatten(g *engine.Graph, elements map[string]archimate.Element, order []string, h *Hierarchy) []PositionedNode {
	out := make([]PositionedNode, 0, len(order))
	emitted := make(map[string]bool, len(order))
	visited := make(map[*engine.Node]bool)

	var visit func(n *engine.Node, parentID string, dx, dy float64)
	visit = func(n *engine.Node, parentID string, dx, dy float64) {
		if n == nil || visited[n] {
			return
		}
		visited[n] = true

		e, known := elements[n.ID]
		if !known || emitted[n.ID] {
			for _, c := range n.Children {
				visit(c, parentID, dx+n.X, dy+n.Y)
			}
			return
		}

		out = append(out, positioned(e, n.X+dx, n.Y+dy, n.Width, n.Height, parentID))
		emitted[n.ID] = true
		for _, c := range n.Children {
			visit(c, n.ID, 0, 0)
		}
	}

	if g != nil {
		for _, n := range g.Children {
			visit(n, "", 0, 0)
		}
	}

	for _, id := range order {
		if emitted[id] {
			continue
		}
		e := elements[id]
		size := ResolveSize(e)
		parent, _ := h.Parent(id)
		if _, ok := elements[parent]; !ok {
			parent = ""
		}
		out = append(out, positioned(e, 0, 0, size.Width, size.Height, parent))
		emitted[id] = true
	}

	return out
}

func positioned(e archimate.Element, x, y, w, h float64, parentID string) PositionedNode {
	el := e.Clone()
	el.Position = &archimate.Position{X: x, Y: y}
	el.Width = &w
	el.Height = &h
	el.ParentID = parentID
	pn := PositionedNode{Element: el}
	if parentID != "" {
		pn.Extent = ExtentParent
	}
	return pn
}

// AbsolutePositions converts parent-relative positions to canvas coordinates
// by summing ancestor offsets along parent links. Nodes whose parent chain is
// broken or cyclic are resolved as far as the chain goes.
func AbsolutePositions(nodes []PositionedNode) map[string]archimate.Position {
	byID := make(map[string]PositionedNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	abs := make(map[string]archimate.Position, len(nodes))
	for _, n := range nodes {
		var x, y float64
		seen := make(map[string]bool)
		for cur, ok := n, true; ok && !seen[cur.ID]; cur, ok = byID[cur.ParentID] {
			seen[cur.ID] = true
			if cur.Position != nil {
				x += cur.Position.X
				y += cur.Position.Y
			}
			if cur.ParentID == "" {
				break
			}
		}
		abs[n.ID] = archimate.Position{X: x, Y: y}
	}
	return abs
}
