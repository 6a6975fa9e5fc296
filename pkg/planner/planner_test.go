package planner

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/engine"
)

// columnEngine stacks siblings vertically, 100px apart, inside each parent.
func columnEngine() engine.Engine {
	return engine.Func(func(_ context.Context, g *engine.Graph) (*engine.Graph, error) {
		out := g.Clone()
		var place func(nodes []*engine.Node)
		place = func(nodes []*engine.Node) {
			for i, n := range nodes {
				n.X = 10
				n.Y = float64(i) * 100
				place(n.Children)
			}
		}
		place(out.Children)
		return out, nil
	})
}

// recordingEngine captures the graph it receives.
type recordingEngine struct {
	mu    sync.Mutex
	graph *engine.Graph
}

func (r *recordingEngine) Layout(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
	r.mu.Lock()
	r.graph = g.Clone()
	r.mu.Unlock()
	return columnEngine().Layout(ctx, g)
}

func parents(res *Result) map[string]string {
	m := make(map[string]string, len(res.Nodes))
	for _, n := range res.Nodes {
		m[n.ID] = n.ParentID
	}
	return m
}

func nodeIDs(res *Result) []string {
	ids := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestPlanLayerContainers(t *testing.T) {
	rec := &recordingEngine{}
	p := New(rec, nil)

	res := p.Plan(context.Background(), Input{
		Elements: []archimate.Element{
			{ID: "A", Type: "BusinessActor"},
			{ID: "B", Type: "ApplicationComponent"},
		},
		Direction: Down,
	})

	if res.Degraded {
		t.Fatalf("unexpected degraded result: %v", res.EngineErr)
	}
	wantParents := map[string]string{
		"LAYER_GROUP_business":    "",
		"LAYER_GROUP_application": "",
		"A":                       "LAYER_GROUP_business",
		"B":                       "LAYER_GROUP_application",
	}
	if diff := cmp.Diff(wantParents, parents(res)); diff != "" {
		t.Errorf("parents mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []string{"LAYER_GROUP_business", "A", "LAYER_GROUP_application", "B"}
	if diff := cmp.Diff(wantOrder, nodeIDs(res)); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []engine.Edge{{
		ID:         "LAYER_ORDER_0",
		Source:     "LAYER_GROUP_business",
		Target:     "LAYER_GROUP_application",
		Constraint: true,
	}}
	if diff := cmp.Diff(wantEdges, rec.graph.Edges); diff != "" {
		t.Errorf("engine edges mismatch (-want +got):\n%s", diff)
	}
	if len(res.Edges) != 0 {
		t.Errorf("ordering edges must not be visible: %+v", res.Edges)
	}

	group := res.Nodes[0]
	if !group.LayerGroup || group.Label != "Business Layer" || group.Layer != "Business" {
		t.Errorf("unexpected container %+v", group.Element)
	}
	if res.Nodes[1].Layer != "Business" {
		t.Errorf("inferred layer not annotated: %q", res.Nodes[1].Layer)
	}
}

func TestPlanStructuralContainer(t *testing.T) {
	p := New(columnEngine(), nil)
	res := p.Plan(context.Background(), Input{
		Elements: []archimate.Element{
			{ID: "G", Type: "Grouping"},
			{ID: "C", Type: "ApplicationComponent"},
		},
		Relationships: []archimate.Relationship{
			{ID: "r", Source: "G", Target: "C", Type: "composition"},
		},
		Direction: Down,
	})

	if diff := cmp.Diff(map[string]string{"G": "", "C": "G"}, parents(res)); diff != "" {
		t.Errorf("parents mismatch (-want +got):\n%s", diff)
	}
	if len(res.Containers) != 0 {
		t.Errorf("no layer container expected, got %v", res.Containers)
	}
	if len(res.Edges) != 0 {
		t.Errorf("consumed relationship is visible: %+v", res.Edges)
	}
}

func TestPlanFirstWins(t *testing.T) {
	p := New(columnEngine(), nil)
	elements := []archimate.Element{
		{ID: "Z1", Type: "Location"},
		{ID: "Z2", Type: "Facility"},
		{ID: "C", Type: "DataObject"},
	}
	r1 := archimate.Relationship{ID: "R1", Source: "Z1", Target: "C", Type: "aggregation"}
	r2 := archimate.Relationship{ID: "R2", Source: "Z2", Target: "C", Type: "composition"}

	res := p.Plan(context.Background(), Input{
		Elements:      elements,
		Relationships: []archimate.Relationship{r1, r2},
	})
	if got := parents(res)["C"]; got != "Z1" {
		t.Errorf("parent(C) = %q, want Z1", got)
	}
	if res.Degraded {
		t.Error("conflict must not degrade the result")
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Relationship.ID != "R2" {
		t.Errorf("Conflicts = %+v", res.Conflicts)
	}
	// The ignored relationship is not consumed, so it stays a visible edge.
	if len(res.Edges) != 1 || res.Edges[0].ID != "R2" {
		t.Errorf("Edges = %+v, want R2", res.Edges)
	}

	res = p.Plan(context.Background(), Input{
		Elements:      elements,
		Relationships: []archimate.Relationship{r2, r1},
	})
	if got := parents(res)["C"]; got != "Z2" {
		t.Errorf("reversed: parent(C) = %q, want Z2", got)
	}
}

func TestPlanLabelWidth(t *testing.T) {
	label := "Customer Relationship Management Hub" // 36 characters
	res := New(engine.Func(func(_ context.Context, g *engine.Graph) (*engine.Graph, error) {
		return g.Clone(), nil
	}), nil).Plan(context.Background(), Input{
		Elements:  []archimate.Element{{ID: "x", Label: label, Type: "Unknown"}},
		Direction: Right,
	})

	if len(res.Nodes) != 1 {
		t.Fatalf("got %d nodes", len(res.Nodes))
	}
	if w, h := *res.Nodes[0].Width, *res.Nodes[0].Height; w != 328 || h != 80 {
		t.Errorf("size = %vx%v, want 328x80", w, h)
	}
}

func TestPlanEngineFailure(t *testing.T) {
	boom := errors.New("engine exploded")
	engines := map[string]engine.Engine{
		"error": engine.Func(func(context.Context, *engine.Graph) (*engine.Graph, error) {
			return nil, boom
		}),
		"panic": engine.Func(func(context.Context, *engine.Graph) (*engine.Graph, error) {
			panic("unreachable state")
		}),
		"nil result": engine.Func(func(context.Context, *engine.Graph) (*engine.Graph, error) {
			return nil, nil
		}),
		"nil engine": nil,
	}

	in := Input{
		Elements: []archimate.Element{
			{ID: "A", Type: "BusinessActor", Position: &archimate.Position{X: 7, Y: 9}},
			{ID: "B", Type: "ApplicationComponent"},
			{ID: "X", Type: "Unknown"},
		},
		Relationships: []archimate.Relationship{
			{ID: "e", Source: "A", Target: "B", Type: "serving"},
			{ID: "d", Source: "A", Target: "ghost", Type: "serving"},
		},
		Direction: Down,
	}

	for name, e := range engines {
		t.Run(name, func(t *testing.T) {
			res := New(e, nil).Plan(context.Background(), in)
			if !res.Degraded || res.EngineErr == nil {
				t.Fatalf("Degraded = %v, EngineErr = %v", res.Degraded, res.EngineErr)
			}
			if name == "error" && !errors.Is(res.EngineErr, boom) {
				t.Errorf("EngineErr = %v, want %v", res.EngineErr, boom)
			}

			wantOrder := []string{"X", "LAYER_GROUP_business", "A", "LAYER_GROUP_application", "B"}
			if diff := cmp.Diff(wantOrder, nodeIDs(res)); diff != "" {
				t.Errorf("fallback nodes mismatch (-want +got):\n%s", diff)
			}
			if got := parents(res)["A"]; got != "LAYER_GROUP_business" {
				t.Errorf("fallback parent(A) = %q", got)
			}
			for _, n := range res.Nodes {
				if n.Position == nil || n.Width == nil || n.Height == nil {
					t.Fatalf("node %s missing placement", n.ID)
				}
				if n.ID == "A" && (n.Position.X != 7 || n.Position.Y != 9) {
					t.Errorf("A position = %+v, want supplied position", *n.Position)
				}
			}
			if len(res.Edges) != 1 || res.Edges[0].ID != "e" {
				t.Errorf("Edges = %+v", res.Edges)
			}
		})
	}
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	w := 200.0
	elements := []archimate.Element{
		{ID: "A", Type: "BusinessActor", Width: &w, Attributes: map[string]any{"owner": "ops"}},
		{ID: "B", Type: "ApplicationComponent"},
	}
	rels := []archimate.Relationship{{ID: "r", Source: "A", Target: "B", Type: "serving"}}

	res := New(columnEngine(), nil).Plan(context.Background(), Input{Elements: elements, Relationships: rels})
	for _, n := range res.Nodes {
		if n.Attributes != nil {
			n.Attributes["owner"] = "changed"
		}
	}

	if elements[0].Layer != "" || elements[0].Position != nil || *elements[0].Width != 200 {
		t.Errorf("input element mutated: %+v", elements[0])
	}
	if elements[0].Attributes["owner"] != "ops" {
		t.Error("input attributes aliased by result")
	}
	if elements[1].Width != nil {
		t.Error("input width set")
	}
}

func TestPlanIdempotentGrouping(t *testing.T) {
	p := New(columnEngine(), nil)
	first := p.Plan(context.Background(), Input{
		Elements: []archimate.Element{
			{ID: "A", Type: "BusinessActor"},
			{ID: "B", Type: "ApplicationComponent"},
			{ID: "C", Type: "Node"},
		},
		Relationships: []archimate.Relationship{{ID: "r", Source: "A", Target: "B", Type: "serving"}},
		Direction:     Down,
	})

	again := make([]archimate.Element, 0, len(first.Nodes))
	for _, n := range first.Nodes {
		again = append(again, n.Element)
	}
	second := p.Plan(context.Background(), Input{Elements: again, Relationships: first.Edges, Direction: Down})

	if diff := cmp.Diff(nodeIDs(first), nodeIDs(second)); diff != "" {
		t.Errorf("re-run changed nodes (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(parents(first), parents(second)); diff != "" {
		t.Errorf("re-run changed parents (-first +second):\n%s", diff)
	}
	if !slices.Equal(first.Containers, second.Containers) {
		t.Errorf("containers %v != %v", first.Containers, second.Containers)
	}
}

func TestPlanDuplicateIDs(t *testing.T) {
	res := New(columnEngine(), nil).Plan(context.Background(), Input{
		Elements: []archimate.Element{
			{ID: "A", Label: "first", Type: "BusinessActor"},
			{ID: "A", Label: "second", Type: "BusinessActor"},
			{ID: "", Label: "anonymous"},
		},
	})
	var labels []string
	for _, n := range res.Nodes {
		if n.ID == "A" {
			labels = append(labels, n.Label)
		}
	}
	if !slices.Equal(labels, []string{"first"}) {
		t.Errorf("labels for A = %v, want [first]", labels)
	}
	if len(res.Nodes) != 2 {
		t.Errorf("got %d nodes, want A and its container", len(res.Nodes))
	}
}

func TestPlanConcurrent(t *testing.T) {
	p := New(columnEngine(), nil)
	in := Input{
		Elements: []archimate.Element{
			{ID: "A", Type: "BusinessActor"},
			{ID: "B", Type: "ApplicationComponent"},
		},
		Relationships: []archimate.Relationship{{ID: "r", Source: "A", Target: "B", Type: "serving"}},
	}
	want := nodeIDs(p.Plan(context.Background(), in))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := nodeIDs(p.Plan(context.Background(), in)); !slices.Equal(got, want) {
				t.Errorf("concurrent plan = %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestPlannerGraphMatchesEngineInput(t *testing.T) {
	rec := &recordingEngine{}
	p := New(rec, nil)
	in := Input{
		Elements: []archimate.Element{
			{ID: "A", Type: "BusinessActor"},
			{ID: "B", Type: "ApplicationComponent"},
			{ID: "N", Type: "Node"},
		},
		Relationships: []archimate.Relationship{
			{ID: "r1", Source: "A", Target: "B", Type: "serving"},
			{ID: "r2", Source: "N", Target: "B", Type: "assignment"},
		},
	}
	p.Plan(context.Background(), in)

	got := p.Graph(context.Background(), in)
	if diff := cmp.Diff(rec.graph, got); diff != "" {
		t.Errorf("Graph() differs from the engine input (-engine +Graph):\n%s", diff)
	}
	if got.Options.Direction != string(Down) {
		t.Errorf("Graph() direction = %q, want default DOWN", got.Options.Direction)
	}
}

func TestDirectionKnown(t *testing.T) {
	tests := []struct {
		dir  Direction
		want bool
	}{
		{Down, true},
		{Up, true},
		{Right, true},
		{Left, true},
		{"down", false},
		{"DIAGONAL", false},
	}
	for _, tt := range tests {
		if got := tt.dir.Known(); got != tt.want {
			t.Errorf("Direction(%q).Known() = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestPlanLogsUnknownDirection(t *testing.T) {
	in := Input{Elements: []archimate.Element{{ID: "A", Type: "BusinessActor"}}}

	for _, tt := range []struct {
		dir    Direction
		logged bool
	}{
		{"down", true},
		{Right, false},
		{"", false},
	} {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
		in.Direction = tt.dir
		New(columnEngine(), logger).Plan(context.Background(), in)
		if got := strings.Contains(buf.String(), "unknown direction"); got != tt.logged {
			t.Errorf("direction %q: logged = %v, want %v\n%s", tt.dir, got, tt.logged, buf.String())
		}
	}
}
