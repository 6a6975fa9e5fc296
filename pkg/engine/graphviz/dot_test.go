package graphviz

import (
	"strings"
	"testing"

	"github.com/matzehuels/archlayout/pkg/engine"
)

func sampleGraph(direction string) *engine.Graph {
	return &engine.Graph{
		Options: engine.DefaultOptions(direction),
		Children: []*engine.Node{
			{ID: "LAYER_GROUP_business", Label: "Business", Padding: engine.ContainerPadding(), Children: []*engine.Node{
				{ID: "actor", Label: `The "Customer"`, Width: 144, Height: 72},
			}},
			{ID: "LAYER_GROUP_application", Label: "Application", Padding: engine.ContainerPadding(), Children: []*engine.Node{
				{ID: "app", Label: "CRM", Width: 160, Height: 80},
			}},
			{ID: "empty", Label: "Empty", Width: 160, Height: 80},
		},
		Edges: []engine.Edge{
			{ID: "LAYER_ORDER_0", Source: "LAYER_GROUP_business", Target: "LAYER_GROUP_application", Constraint: true},
			{ID: "r1", Source: "actor", Target: "app"},
			{ID: "r2", Source: "LAYER_GROUP_business", Target: "empty"},
			{ID: "r3", Source: "ghost", Target: "app"},
		},
	}
}

func TestRankdir(t *testing.T) {
	tests := []struct {
		direction, want string
	}{
		{"DOWN", "TB"},
		{"UP", "BT"},
		{"RIGHT", "LR"},
		{"LEFT", "RL"},
		{"down", "TB"},
		{"", "TB"},
	}
	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			if got := Rankdir(tt.direction); got != tt.want {
				t.Errorf("Rankdir(%q) = %q, want %q", tt.direction, got, tt.want)
			}
		})
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(engine.DirectionDown))

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"compound=true;",
		"splines=ortho;",
		"nodesep=1.3889;",
		"subgraph cluster_0 {",
		`label="Business";`,
		`margin="30,60";`,
		`a0 [shape=box, style=invis, label="", width=0, height=0];`,
		"a0 -> n1 [style=invis];",
		"a2 -> n3 [style=invis];",
		`n1 [label="The \"Customer\"", width=2, height=1];`,
		"subgraph cluster_2 {",
		`n4 [label="Empty", width=2.2222, height=1.1111];`,
		"a0 -> a2 [style=invis];",
		"n1 -> a2 [style=invis];",
		"n1 -> n3 [tailport=s, headport=n];",
		"a0 -> n4 [ltail=cluster_0, tailport=s, headport=n];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Error("edge with unknown endpoint was written")
	}
}

func TestToDOTContainerMinimumWidth(t *testing.T) {
	g := &engine.Graph{
		Options: engine.DefaultOptions(engine.DirectionDown),
		Children: []*engine.Node{
			{ID: "G", Label: "Group", Width: 480, Height: 200, Padding: engine.ContainerPadding(), Children: []*engine.Node{
				{ID: "a", Width: 160, Height: 80},
			}},
		},
	}
	dot := ToDOT(g)
	// 480 minus 30 on each side, in inches.
	if !strings.Contains(dot, `a0 [shape=box, style=invis, label="", width=5.8333, height=0];`) {
		t.Errorf("anchor does not reserve the container's inner width:\n%s", dot)
	}
}

func TestToDOTStacksNestedContainers(t *testing.T) {
	g := &engine.Graph{
		Options: engine.DefaultOptions(engine.DirectionDown),
		Children: []*engine.Node{
			{ID: "top", Children: []*engine.Node{
				{ID: "inner", Children: []*engine.Node{{ID: "x"}}},
				{ID: "y"},
			}},
			{ID: "bottom", Children: []*engine.Node{{ID: "z"}}},
		},
		Edges: []engine.Edge{{ID: "LAYER_ORDER_0", Source: "top", Target: "bottom", Constraint: true}},
	}
	dot := ToDOT(g)
	// top=a0, inner=a1, x=n2, y=n3, bottom=a4, z=n5
	for _, want := range []string{
		"a0 -> a1 [style=invis];",
		"a0 -> n3 [style=invis];",
		"a1 -> n2 [style=invis];",
		"a4 -> n5 [style=invis];",
		"a0 -> a4 [style=invis];",
		"a1 -> a4 [style=invis];",
		"n2 -> a4 [style=invis];",
		"n3 -> a4 [style=invis];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "n5 -> a4") || strings.Contains(dot, "-> a0 ") {
		t.Errorf("ordering edges point the wrong way:\n%s", dot)
	}
}

func TestToDOTFreePorts(t *testing.T) {
	dot := ToDOT(sampleGraph(engine.DirectionRight))
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Error("missing rankdir=LR")
	}
	if strings.Contains(dot, "tailport") {
		t.Errorf("ports should be free outside DOWN:\n%s", dot)
	}
	if !strings.Contains(dot, "  n1 -> n3;\n") {
		t.Errorf("plain edge not written:\n%s", dot)
	}
}

func TestToDOTNestedEndpoints(t *testing.T) {
	g := &engine.Graph{
		Options: engine.DefaultOptions(engine.DirectionLeft),
		Children: []*engine.Node{
			{ID: "G", Label: "Group", Children: []*engine.Node{
				{ID: "a", Width: 72, Height: 72},
			}},
		},
		Edges: []engine.Edge{
			{ID: "in", Source: "G", Target: "a"},
			{ID: "out", Source: "a", Target: "G"},
		},
	}
	dot := ToDOT(g)
	if strings.Contains(dot, "ltail") || strings.Contains(dot, "lhead") {
		t.Errorf("edges between a container and its own child must not clip:\n%s", dot)
	}
	if !strings.Contains(dot, "a0 -> n1;") || !strings.Contains(dot, "n1 -> a0;") {
		t.Errorf("nested edges missing:\n%s", dot)
	}
}

func TestToDOTDuplicateIDs(t *testing.T) {
	shared := &engine.Node{ID: "x", Width: 72, Height: 72}
	g := &engine.Graph{Children: []*engine.Node{shared, shared}}
	dot := ToDOT(g)
	if strings.Count(dot, "n0 [") != 1 || strings.Contains(dot, "n1 [") {
		t.Errorf("duplicate node written twice:\n%s", dot)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", `"plain"`},
		{`a"b`, `"a\"b"`},
		{`back\slash`, `"back\\slash"`},
		{"two\nlines", `"two\nlines"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
