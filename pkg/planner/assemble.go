package planner

import (
	"fmt"

	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/engine"
)

// Assembly is the hierarchical graph handed to the layout engine, together
// with the relationships that remain visible to the caller.
type Assembly struct {
	Graph   *engine.Graph
	Visible []archimate.Relationship

	// Containers are the layer container ids in precedence order.
	Containers []string
}

// Assemble builds the engine graph.
//
// nodes must hold every element of the layout, synthetic containers included,
// in output order. Nodes whose parent in h is known are nested under it,
// recursively and to any depth; all others are top-level. In the vertical
// direction consecutive layer containers are chained with constraint edges
// (LAYER_ORDER_<i>). Visible edges are rels minus consumed structural
// relationships, self-loops and relationships with an unknown endpoint.
func Assemble(nodes []archimate.Element, h *Hierarchy, groups LayerGroups, rels []archimate.Relationship, consumed map[int]bool, dir Direction) Assembly {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	children := make(map[string][]string)
	var roots []string
	for _, n := range nodes {
		if p, ok := h.Parent(n.ID); ok && p != n.ID {
			if _, known := index[p]; known {
				children[p] = append(children[p], n.ID)
				continue
			}
		}
		roots = append(roots, n.ID)
	}

	visited := make(map[string]bool, len(nodes))
	var build func(id string) *engine.Node
	build = func(id string) *engine.Node {
		visited[id] = true
		e := nodes[index[id]]
		size := ResolveSize(e)
		n := &engine.Node{
			ID:           id,
			Label:        e.DisplayLabel(),
			Width:        size.Width,
			Height:       size.Height,
			Hierarchical: e.IsContainer(),
			Padding:      engine.LeafPadding(),
		}
		if n.Hierarchical {
			n.Padding = engine.ContainerPadding()
		}
		for _, c := range children[id] {
			if visited[c] {
				continue
			}
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	g := &engine.Graph{Options: engine.DefaultOptions(string(dir))}
	for _, id := range roots {
		if !visited[id] {
			g.Children = append(g.Children, build(id))
		}
	}
	// Only reachable if the hierarchy were cyclic; lift such nodes to the top.
	for _, n := range nodes {
		if !visited[n.ID] {
			g.Children = append(g.Children, build(n.ID))
		}
	}

	if dir.Vertical() {
		for i := 0; i+1 < len(groups.ContainerIDs); i++ {
			g.Edges = append(g.Edges, engine.Edge{
				ID:         fmt.Sprintf("LAYER_ORDER_%d", i),
				Source:     groups.ContainerIDs[i],
				Target:     groups.ContainerIDs[i+1],
				Constraint: true,
			})
		}
	}

	visible := make([]archimate.Relationship, 0, len(rels))
	for i, r := range rels {
		if consumed[i] || r.IsSelfLoop() {
			continue
		}
		if _, ok := index[r.Source]; !ok {
			continue
		}
		if _, ok := index[r.Target]; !ok {
			continue
		}
		visible = append(visible, r)
		g.Edges = append(g.Edges, engine.Edge{ID: edgeID(r, i), Source: r.Source, Target: r.Target})
	}

	return Assembly{Graph: g, Visible: visible, Containers: groups.ContainerIDs}
}

func edgeID(r archimate.Relationship, i int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("edge_%d", i)
}
