// Package archimate defines the enterprise-architecture vocabulary the layout
// planner works with.
//
// # Model
//
// [Element] and [Relationship] are the caller-facing input types. Both carry
// JSON and YAML tags matching the editor's wire format:
//
//	{"id": "A", "label": "Customer", "type": "BusinessActor"}
//	{"source": "G", "target": "C", "type": "composition"}
//
// # Layers
//
// [Layer] is a totally ordered enumeration. The order of the constants is the
// top-to-bottom order of layer containers in vertical layouts:
//
//	Motivation, Strategy, Business, Application, Technology,
//	Physical, Implementation, Other, Composite
//
// [LayerOf] infers a layer from an element type using a fixed table. Type names
// are compared after lowercasing and removing spaces, underscores and hyphens,
// so "ApplicationComponent" and "application component" resolve alike.
//
// # Classification
//
// [Classify] separates structural relationships (composition, aggregation,
// assignment, nesting, "composed of", "assigned to") from associative ones.
// [IsContainerType] decides whether an element type may contain others.
//
// All lookup tables are package-level values that are never written after
// initialization, so every function here is safe for concurrent use.
package archimate
