package graphviz

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/archlayout/pkg/engine"
)

// pointsPerInch converts pixel sizes to the inches Graphviz expects. Graphviz
// reports positions in points, so one pixel maps to one point.
const pointsPerInch = 72.0

// symbols maps engine node ids to the identifiers used in the DOT source.
// Element ids are arbitrary strings, so nodes are renamed n0, n1, ... and
// containers with children become cluster_<i> subgraphs holding an invisible
// anchor node a<i> that edges to the container attach to. The anchor is ranked
// above every member, so it marks the top of its cluster.
type symbols struct {
	node     map[string]string   // leaf or childless container -> DOT node
	cluster  map[string]string   // container -> subgraph name
	anchor   map[string]string   // container -> anchor node
	parent   map[string]string   // engine id -> parent engine id
	byName   map[string]string   // DOT name (node or cluster) -> engine id
	members  map[string][]string // container -> DOT nodes of its direct children
	inner    map[string][]string // container -> every DOT node inside it
	clusters []string            // containers in declaration order
}

func newSymbols(g *engine.Graph) *symbols {
	s := &symbols{
		node:    make(map[string]string),
		cluster: make(map[string]string),
		anchor:  make(map[string]string),
		parent:  make(map[string]string),
		byName:  make(map[string]string),
		members: make(map[string][]string),
		inner:   make(map[string][]string),
	}
	i := 0
	engine.Walk(g.Children, func(n, parent *engine.Node) bool {
		if _, named := s.node[n.ID]; named {
			return false
		}
		if _, named := s.cluster[n.ID]; named {
			return false
		}
		if parent != nil {
			s.parent[n.ID] = parent.ID
		}
		if len(n.Children) > 0 {
			name := fmt.Sprintf("cluster_%d", i)
			s.cluster[n.ID] = name
			s.anchor[n.ID] = fmt.Sprintf("a%d", i)
			s.byName[name] = n.ID
			s.clusters = append(s.clusters, n.ID)
		} else {
			name := fmt.Sprintf("n%d", i)
			s.node[n.ID] = name
			s.byName[name] = n.ID
		}
		i++
		return true
	})

	seen := make(map[string]bool)
	var collect func(n *engine.Node) []string
	collect = func(n *engine.Node) []string {
		if seen[n.ID] {
			return nil
		}
		seen[n.ID] = true
		if _, isCluster := s.cluster[n.ID]; !isCluster {
			return []string{s.node[n.ID]}
		}
		var inner []string
		for _, c := range n.Children {
			if seen[c.ID] {
				continue
			}
			head, _, _ := s.endpoint(c.ID)
			s.members[n.ID] = append(s.members[n.ID], head)
			inner = append(inner, collect(c)...)
		}
		s.inner[n.ID] = inner
		return append([]string{s.anchor[n.ID]}, inner...)
	}
	for _, n := range g.Children {
		collect(n)
	}
	return s
}

// tails returns the DOT nodes a constraint edge leaves from: the node itself,
// or everything inside a container so the target lands below all of it.
func (s *symbols) tails(id string) []string {
	if _, isCluster := s.cluster[id]; isCluster {
		return append([]string{s.anchor[id]}, s.inner[id]...)
	}
	if n, ok := s.node[id]; ok {
		return []string{n}
	}
	return nil
}

// endpoint returns the DOT node an edge attaches to and, for containers, the
// cluster to clip the edge at.
func (s *symbols) endpoint(id string) (node, cluster string, ok bool) {
	if c, isCluster := s.cluster[id]; isCluster {
		return s.anchor[id], c, true
	}
	n, ok := s.node[id]
	return n, "", ok
}

// within reports whether id is inside the container ancestor.
func (s *symbols) within(id, ancestor string) bool {
	seen := make(map[string]bool)
	for cur, ok := s.parent[id]; ok && !seen[cur]; cur, ok = s.parent[cur] {
		if cur == ancestor {
			return true
		}
		seen[cur] = true
	}
	return false
}

var rankdirs = map[string]string{
	engine.DirectionDown:  "TB",
	engine.DirectionUp:    "BT",
	engine.DirectionRight: "LR",
	engine.DirectionLeft:  "RL",
}

// Rankdir maps a layout direction to the Graphviz rankdir. Unknown
// directions fall back to top-to-bottom.
func Rankdir(direction string) string {
	if r, ok := rankdirs[direction]; ok {
		return r
	}
	return "TB"
}

// ToDOT converts a layout graph to Graphviz DOT source.
//
// Node sizes are fixed so Graphviz keeps the sizes the planner estimated.
// Containers with children become clusters whose margin mirrors the container
// padding. The cluster anchor is as wide as the container's inner width, so a
// cluster never comes out narrower than its estimated size. Constraint edges
// run invisibly from everything inside the source to the target's anchor,
// which stacks the target below the source.
func ToDOT(g *engine.Graph) string {
	dot, _ := toDOT(g)
	return dot
}

func toDOT(g *engine.Graph) (string, *symbols) {
	s := newSymbols(g)
	opts := g.Options

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", Rankdir(opts.Direction))
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  newrank=true;\n")
	if opts.EdgeRouting == engine.RoutingOrthogonal {
		buf.WriteString("  splines=ortho;\n")
	}
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeNodeSpacing))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.NodeNodeSpacingBetweenLayers))
	buf.WriteString("  node [shape=box, fixedsize=true];\n")
	buf.WriteString("\n")

	written := make(map[string]bool)
	var write func(n *engine.Node, indent string)
	write = func(n *engine.Node, indent string) {
		if written[n.ID] {
			return
		}
		written[n.ID] = true

		cluster, isCluster := s.cluster[n.ID]
		if !isCluster {
			fmt.Fprintf(&buf, "%s%s [label=%s, width=%s, height=%s];\n",
				indent, s.node[n.ID], quote(n.Label), inches(n.Width), inches(n.Height))
			return
		}

		fmt.Fprintf(&buf, "%ssubgraph %s {\n", indent, cluster)
		fmt.Fprintf(&buf, "%s  label=%s;\n", indent, quote(n.Label))
		fmt.Fprintf(&buf, "%s  labelloc=t;\n", indent)
		fmt.Fprintf(&buf, "%s  margin=\"%s,%s\";\n", indent,
			number(max(n.Padding.Left, n.Padding.Right)), number(max(n.Padding.Top, n.Padding.Bottom)))
		inner := max(n.Width-n.Padding.Left-n.Padding.Right, 0)
		fmt.Fprintf(&buf, "%s  %s [shape=box, style=invis, label=\"\", width=%s, height=0];\n", indent, s.anchor[n.ID], inches(inner))
		for _, c := range n.Children {
			write(c, indent+"  ")
		}
		fmt.Fprintf(&buf, "%s}\n", indent)
	}
	for _, n := range g.Children {
		write(n, "  ")
	}

	buf.WriteString("\n")
	for _, id := range s.clusters {
		for _, m := range s.members[id] {
			fmt.Fprintf(&buf, "  %s -> %s [style=invis];\n", s.anchor[id], m)
		}
	}

	fixedPorts := opts.PortConstraints == engine.PortConstraintsFixedSide
	for _, e := range g.Edges {
		from, fromCluster, ok := s.endpoint(e.Source)
		if !ok {
			continue
		}
		to, toCluster, ok := s.endpoint(e.Target)
		if !ok {
			continue
		}

		if e.Constraint {
			for _, tail := range s.tails(e.Source) {
				fmt.Fprintf(&buf, "  %s -> %s [style=invis];\n", tail, to)
			}
			continue
		}

		var attrs []string
		if fromCluster != "" && !s.within(e.Target, e.Source) {
			attrs = append(attrs, "ltail="+fromCluster)
		}
		if toCluster != "" && !s.within(e.Source, e.Target) {
			attrs = append(attrs, "lhead="+toCluster)
		}
		if fixedPorts {
			attrs = append(attrs, "tailport=s", "headport=n")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", from, to, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String(), s
}

func inches(px float64) string { return number(px / pointsPerInch) }

func number(f float64) string { return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".") }

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")
	return `"` + r.Replace(s) + `"`
}
