package archimate

import "maps"

// Position is a 2D coordinate in pixels.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Element is a diagram node as supplied by the caller.
//
// Layer, Attributes, Position, Width, Height and ParentID are optional. Width and Height
// are pointers so an explicit zero can be told apart from "not set"; a
// non-positive value is treated as not set.
type Element struct {
	ID         string         `json:"id" yaml:"id" validate:"required"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Type       string         `json:"type" yaml:"type"`
	Layer      string         `json:"layer,omitempty" yaml:"layer,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Position   *Position      `json:"position,omitempty" yaml:"position,omitempty"`
	Width      *float64       `json:"width,omitempty" yaml:"width,omitempty" validate:"omitempty,gte=0"`
	Height     *float64       `json:"height,omitempty" yaml:"height,omitempty" validate:"omitempty,gte=0"`

	// ParentID nests the element inside a container: a link set by hand in
	// the editor, or one carried over from an earlier layout result.
	ParentID string `json:"parentId,omitempty" yaml:"parentId,omitempty"`

	// LayerGroup marks a synthetic layer container produced by the planner.
	LayerGroup bool `json:"isLayerGroup,omitempty" yaml:"isLayerGroup,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (e Element) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID
}

// Clone returns a deep copy. Annotating the copy never affects the original.
func (e Element) Clone() Element {
	out := e
	if e.Attributes != nil {
		out.Attributes = maps.Clone(e.Attributes)
	}
	if e.Position != nil {
		p := *e.Position
		out.Position = &p
	}
	if e.Width != nil {
		w := *e.Width
		out.Width = &w
	}
	if e.Height != nil {
		h := *e.Height
		out.Height = &h
	}
	return out
}

// ResolvedLayer returns the explicit layer when it parses, otherwise the layer
// inferred from the element type.
func (e Element) ResolvedLayer() Layer {
	if l, ok := ParseLayer(e.Layer); ok {
		return l
	}
	return LayerOf(e.Type)
}

// IsContainer reports whether the element can hold children, either because
// its type is container-capable or because it is a synthetic layer group.
func (e Element) IsContainer() bool {
	return e.LayerGroup || IsContainerType(e.Type)
}

// Relationship is a directed, typed link between two elements.
type Relationship struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Source      string `json:"source" yaml:"source" validate:"required"`
	Target      string `json:"target" yaml:"target" validate:"required"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Kind classifies the relationship by its type.
func (r Relationship) Kind() RelationKind { return Classify(r.Type) }

// IsSelfLoop reports whether source and target are the same element.
func (r Relationship) IsSelfLoop() bool { return r.Source == r.Target }
