package archimate

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		relType string
		want    RelationKind
	}{
		{"composition", Structural},
		{"Composition", Structural},
		{"AGGREGATION", Structural},
		{"assignment", Structural},
		{"nesting", Structural},
		{"composed of", Structural},
		{"Assigned To", Structural},
		{"  composition ", Structural},
		{"serving", Associative},
		{"flow", Associative},
		{"realization", Associative},
		{"compositions", Associative}, // no partial matching
		{"composed", Associative},
		{"", Associative},
	}

	for _, tt := range tests {
		if got := Classify(tt.relType); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.relType, got, tt.want)
		}
	}
}

func TestIsContainerType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"Grouping", true},
		{"group", true},
		{"Location", true},
		{"Security Zone", true},
		{"Node", true},
		{"Device", true},
		{"SystemSoftware", true},
		{"system software", true},
		{"Path", true},
		{"Facility", true},
		{"Equipment", true},
		{"Plateau", true},
		{"Gap", true},
		{"business Layer", true},
		{"Composite", true},
		{"BusinessActor", false},
		{"ApplicationComponent", false},
		{"DataObject", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsContainerType(tt.typ); got != tt.want {
			t.Errorf("IsContainerType(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestLayerOf(t *testing.T) {
	tests := []struct {
		typ  string
		want Layer
	}{
		{"BusinessActor", LayerBusiness},
		{"business actor", LayerBusiness},
		{"business_process", LayerBusiness},
		{"ApplicationComponent", LayerApplication},
		{"DataObject", LayerApplication},
		{"Node", LayerTechnology},
		{"SystemSoftware", LayerTechnology},
		{"Goal", LayerMotivation},
		{"Capability", LayerMotivation},
		{"CourseOfAction", LayerStrategy},
		{"Equipment", LayerPhysical},
		{"WorkPackage", LayerImplementation},
		{"Grouping", LayerComposite},
		{"Location", LayerComposite},
		{"Stakeholder", LayerMotivation},
		{"ValueStream", LayerStrategy},
		{"Product", LayerBusiness},
		{"ApplicationProcess", LayerApplication},
		{"TechnologyProcess", LayerTechnology},
		{"Widget", LayerOther},
		{"", LayerOther},
	}

	for _, tt := range tests {
		if got := LayerOf(tt.typ); got != tt.want {
			t.Errorf("LayerOf(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in     string
		want   Layer
		wantOK bool
	}{
		{"Business", LayerBusiness, true},
		{"business", LayerBusiness, true},
		{" TECHNOLOGY ", LayerTechnology, true},
		{"Implementation & Migration", LayerImplementation, true},
		{"Other", LayerOther, true},
		{"", LayerOther, false},
		{"nonsense", LayerOther, false},
	}

	for _, tt := range tests {
		got, ok := ParseLayer(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLayer(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLayerOrder(t *testing.T) {
	layers := Layers()
	if len(layers) != 9 {
		t.Fatalf("Layers() returned %d layers, want 9", len(layers))
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1] >= layers[i] {
			t.Errorf("layers out of order at %d: %v >= %v", i, layers[i-1], layers[i])
		}
	}
	if LayerBusiness.Key() != "business" {
		t.Errorf("Key() = %q, want %q", LayerBusiness.Key(), "business")
	}
	if LayerApplication.Label() != "Application Layer" {
		t.Errorf("Label() = %q, want %q", LayerApplication.Label(), "Application Layer")
	}
}

func TestElementClone(t *testing.T) {
	w := 200.0
	orig := Element{
		ID:         "a",
		Attributes: map[string]any{"owner": "ops"},
		Position:   &Position{X: 1, Y: 2},
		Width:      &w,
	}

	clone := orig.Clone()
	clone.Attributes["owner"] = "dev"
	clone.Position.X = 99
	*clone.Width = 1
	clone.Layer = "Business"

	if orig.Attributes["owner"] != "ops" {
		t.Error("Clone shares attributes with original")
	}
	if orig.Position.X != 1 {
		t.Error("Clone shares position with original")
	}
	if *orig.Width != 200 {
		t.Error("Clone shares width with original")
	}
	if orig.Layer != "" {
		t.Error("Clone shares layer with original")
	}
}

func TestResolvedLayer(t *testing.T) {
	explicit := Element{ID: "a", Type: "BusinessActor", Layer: "Application"}
	if got := explicit.ResolvedLayer(); got != LayerApplication {
		t.Errorf("explicit layer: got %v, want %v", got, LayerApplication)
	}

	inferred := Element{ID: "b", Type: "BusinessActor"}
	if got := inferred.ResolvedLayer(); got != LayerBusiness {
		t.Errorf("inferred layer: got %v, want %v", got, LayerBusiness)
	}

	bogus := Element{ID: "c", Type: "DataObject", Layer: "nope"}
	if got := bogus.ResolvedLayer(); got != LayerApplication {
		t.Errorf("unparseable layer: got %v, want %v", got, LayerApplication)
	}
}
