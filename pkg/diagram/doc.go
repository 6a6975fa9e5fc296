// Package diagram reads and writes diagram documents: the elements,
// relationships and direction that make up one layout request, and the
// positioned result the planner returns.
//
// # Format
//
// Documents are JSON or YAML with the same shape:
//
//	{
//	  "direction": "DOWN",
//	  "nodes": [
//	    {"id": "crm", "label": "CRM", "type": "ApplicationComponent"},
//	    {"id": "db", "type": "Node"}
//	  ],
//	  "edges": [
//	    {"id": "r1", "source": "db", "target": "crm", "type": "assignment"}
//	  ]
//	}
//
// A layout result has the same nodes and edges keys, so a result can be read
// back as a document and laid out again. Positioned nodes carry position,
// width, height, parentId and extent; the extra extent key is ignored on
// input.
//
// # Validation
//
// [Validate] checks struct tags with go-playground/validator and then the
// rules tags cannot express: element ids must be unique and well formed.
// Relationships pointing at unknown elements are allowed; the planner drops
// them.
//
// # Hashing
//
// [Hash] returns a stable SHA-256 over the canonical JSON encoding, used as
// the document part of cache keys.
package diagram
