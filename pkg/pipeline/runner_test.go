package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/planner"
)

// countingEngine places siblings in a row and counts layout calls.
type countingEngine struct {
	calls atomic.Int32
	fail  bool
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Layout(_ context.Context, g *engine.Graph) (*engine.Graph, error) {
	e.calls.Add(1)
	if e.fail {
		return nil, engine.ErrNoResult
	}
	out := g.Clone()
	var place func(nodes []*engine.Node)
	place = func(nodes []*engine.Node) {
		for i, n := range nodes {
			n.X, n.Y = float64(i)*200, 10
			place(n.Children)
		}
	}
	place(out.Children)
	return out, nil
}

func sampleDocument() *diagram.Document {
	return &diagram.Document{
		Elements: []archimate.Element{
			{ID: "actor", Label: "Customer", Type: "BusinessActor"},
			{ID: "crm", Label: "CRM", Type: "ApplicationComponent"},
			{ID: "vm", Label: "VM", Type: "Node"},
		},
		Relationships: []archimate.Relationship{
			{ID: "r1", Source: "crm", Target: "actor", Type: "serving"},
			{ID: "r2", Source: "vm", Target: "crm", Type: "assignment"},
		},
	}
}

func newTestRunner(t *testing.T, e engine.Engine) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(e, c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRunnerCachesLayouts(t *testing.T) {
	e := &countingEngine{}
	r := newTestRunner(t, e)
	ctx := context.Background()

	first, err := r.Execute(ctx, sampleDocument(), Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, sampleDocument(), Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the cache")
	}
	if e.calls.Load() != 1 {
		t.Errorf("engine called %d times, want 1", e.calls.Load())
	}
	if string(first.Artifacts[FormatJSON]) != string(second.Artifacts[FormatJSON]) {
		t.Error("cached layout exports differently")
	}
	if len(second.Layout.Containers) != len(first.Layout.Containers) || len(second.Layout.Containers) == 0 {
		t.Errorf("containers lost in cache: %v vs %v", second.Layout.Containers, first.Layout.Containers)
	}

	// A different direction is a different layout.
	if _, err := r.Execute(ctx, sampleDocument(), Options{Direction: "RIGHT"}); err != nil {
		t.Fatal(err)
	}
	// Refresh bypasses the cache.
	if _, err := r.Execute(ctx, sampleDocument(), Options{Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if e.calls.Load() != 3 {
		t.Errorf("engine called %d times, want 3", e.calls.Load())
	}
}

func TestRunnerDoesNotCacheDegraded(t *testing.T) {
	e := &countingEngine{fail: true}
	r := newTestRunner(t, e)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := r.Execute(ctx, sampleDocument(), Options{})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !res.Layout.Degraded || res.CacheInfo.LayoutHit {
			t.Errorf("run %d: degraded=%v hit=%v", i, res.Layout.Degraded, res.CacheInfo.LayoutHit)
		}
	}
	if e.calls.Load() != 2 {
		t.Errorf("engine called %d times, want 2", e.calls.Load())
	}
}

func TestRunnerExport(t *testing.T) {
	r := newTestRunner(t, &countingEngine{})
	res, err := r.Execute(context.Background(), sampleDocument(), Options{Formats: []string{"json", "yaml", "dot", "json"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var out planner.Result
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &out); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	// crm is assigned into vm, so only the business layer gets a container.
	if len(out.Nodes) != res.Stats.Nodes || res.Stats.Nodes != 4 {
		t.Errorf("json artifact has %d nodes, stats %d, want 4", len(out.Nodes), res.Stats.Nodes)
	}
	parents := make(map[string]string, len(out.Nodes))
	for _, n := range out.Nodes {
		parents[n.ID] = n.ParentID
	}
	if parents["crm"] != "vm" {
		t.Errorf("crm parent = %q, want vm", parents["crm"])
	}
	if parents["actor"] != planner.LayerGroupID(archimate.LayerBusiness) {
		t.Errorf("actor parent = %q, want business layer group", parents["actor"])
	}
	if _, ok := parents[planner.LayerGroupID(archimate.LayerApplication)]; ok {
		t.Error("application layer group should not be synthesized")
	}
	if !strings.Contains(string(res.Artifacts[FormatYAML]), "parentId: LAYER_GROUP_") {
		t.Errorf("yaml artifact lacks parent links:\n%s", res.Artifacts[FormatYAML])
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, "style=invis") {
		t.Errorf("dot artifact unexpected:\n%s", dot)
	}
	if len(res.Artifacts) != 3 {
		t.Errorf("got %d artifacts, want 3", len(res.Artifacts))
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := newTestRunner(t, &countingEngine{})
	_, err := r.Execute(context.Background(), sampleDocument(), Options{Formats: []string{"png"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute(png) error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	good := write("ok.yaml", "nodes:\n  - {id: a, type: Node}\n")
	if doc, err := Load(good); err != nil || len(doc.Elements) != 1 {
		t.Errorf("Load(ok) = %+v, %v", doc, err)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrCodeFileNotFound},
		{"extension", write("doc.txt", "{}"), errors.ErrCodeInvalidFormat},
		{"syntax", write("bad.json", "{"), errors.ErrCodeInvalidDocument},
		{"duplicate", write("dup.json", `{"nodes":[{"id":"a"},{"id":"a"}]}`), errors.ErrCodeInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"nodes":[{"id":"a"}],"edges":[]}`), diagram.FormatJSON)
	if err != nil || len(doc.Elements) != 1 {
		t.Errorf("Decode() = %+v, %v", doc, err)
	}
	if _, err := Decode(strings.NewReader(`{"nodes":[{"label":"x"}]}`), diagram.FormatJSON); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Decode(missing id) error = %v", err)
	}
}
