// Package engine defines the contract between the layout planner and the
// layered-graph drawing engine that assigns coordinates.
//
// The planner builds a [Graph] whose nodes nest their children, hands it to an
// [Engine], and expects back the same tree with every node positioned relative
// to its immediate parent's origin and sized (containers may grow to fit their
// children). Edges may connect nodes at different nesting levels. No contract
// is made about edge waypoints.
//
// Engines must treat the input graph as read-only and return a new tree.
// An engine error is recoverable: the planner falls back to an unpositioned
// result rather than failing.
package engine

import (
	"context"
	"errors"
)

// ErrNoResult is returned by engines that finished without producing a
// positioned graph.
var ErrNoResult = errors.New("layout engine returned no result")

// Padding is the inner spacing of a node, in pixels.
type Padding struct {
	Top, Left, Bottom, Right float64
}

// Node is a vertex in the hierarchical layout graph.
type Node struct {
	ID     string
	Label  string
	X, Y   float64 // relative to the parent's origin
	Width  float64
	Height float64

	// Hierarchical marks containers whose children are laid out with the same
	// recursive layered algorithm as the root.
	Hierarchical bool
	Padding      Padding
	Children     []*Node
}

// Edge is a directed connection between two node ids. Constraint edges exist
// only to bias ordering and never correspond to a visible relationship.
type Edge struct {
	ID         string
	Source     string
	Target     string
	Constraint bool
}

// Graph is the root of a layout request.
type Graph struct {
	Children []*Node
	Edges    []Edge
	Options  Options
}

// Engine computes positions for a hierarchical graph.
type Engine interface {
	Layout(ctx context.Context, g *Graph) (*Graph, error)
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, g *Graph) (*Graph, error)

// Layout calls f(ctx, g).
func (f Func) Layout(ctx context.Context, g *Graph) (*Graph, error) { return f(ctx, g) }

// Walk visits every node in pre-order, passing the parent (nil at top level).
// Returning false from fn stops descent into that node's children.
func Walk(nodes []*Node, fn func(n, parent *Node) bool) {
	var visit func(n, parent *Node)
	visit = func(n, parent *Node) {
		if !fn(n, parent) {
			return
		}
		for _, c := range n.Children {
			visit(c, n)
		}
	}
	for _, n := range nodes {
		visit(n, nil)
	}
}

// Clone returns a deep copy of the node tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Children = cloneNodes(n.Children)
	return &out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	return &Graph{
		Children: cloneNodes(g.Children),
		Edges:    append([]Edge(nil), g.Edges...),
		Options:  g.Options,
	}
}

// cloneNodes deep-copies nodes, keeping a nil slice nil.
func cloneNodes(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, c := range nodes {
		out[i] = c.Clone()
	}
	return out
}
