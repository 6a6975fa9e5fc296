package diagram

import (
	"github.com/matzehuels/archlayout/pkg/archimate"
	"github.com/matzehuels/archlayout/pkg/planner"
)

// Document is a layout request as stored on disk or sent over HTTP.
type Document struct {
	Direction     string                   `json:"direction,omitempty" yaml:"direction,omitempty"`
	Elements      []archimate.Element      `json:"nodes" yaml:"nodes" validate:"dive"`
	Relationships []archimate.Relationship `json:"edges" yaml:"edges" validate:"dive"`
}

// Input converts the document to a planner request. The direction argument
// overrides the document's direction when non-empty.
func (d *Document) Input(direction string) planner.Input {
	dir := d.Direction
	if direction != "" {
		dir = direction
	}
	return planner.Input{
		Elements:      d.Elements,
		Relationships: d.Relationships,
		Direction:     planner.Direction(dir),
	}
}

// FromResult turns a layout result back into a document, keeping positions
// and parent links so the next layout reuses the same nesting.
func FromResult(r *planner.Result, direction string) *Document {
	doc := &Document{
		Direction:     direction,
		Elements:      make([]archimate.Element, 0, len(r.Nodes)),
		Relationships: append([]archimate.Relationship(nil), r.Edges...),
	}
	for _, n := range r.Nodes {
		doc.Elements = append(doc.Elements, n.Element.Clone())
	}
	return doc
}
