// Package planner turns a flat enterprise-architecture diagram into a nested,
// positioned one.
//
// # Overview
//
// Generated diagrams arrive as a list of elements and typed relationships
// with no coordinates. The planner recovers the containment hidden in the
// relationship semantics, groups whatever is left by architectural layer,
// hands the resulting tree to a layered-graph engine and flattens the answer
// into records a nested renderer can consume directly.
//
// [Planner.Plan] runs the whole pipeline:
//
//  1. [BuildHierarchy] applies explicit parent links, then structural
//     relationships (composition, aggregation, assignment, nesting) whose
//     source type is container-capable. The first parent wins; cycles are
//     rejected and reported as [Conflict] values.
//  2. [SynthesizeLayers] creates one container per layer that still has
//     ungrouped elements, with ids of the form LAYER_GROUP_<layer>.
//  3. [ResolveSize] estimates node sizes from labels.
//  4. [Assemble] builds the nested [engine.Graph], including LAYER_ORDER_<i>
//     constraint edges for top-down layouts.
//  5. The configured [engine.Engine] assigns coordinates.
//  6. [Flatten] emits [PositionedNode] records in pre-order.
//
// # Coordinates
//
// Positions are relative to the parent container's origin. Use
// [AbsolutePositions] to obtain canvas coordinates.
//
// # Failure
//
// Plan never returns an error. When the engine fails or panics the result is
// marked Degraded and carries unpositioned nodes with their parent links, so
// callers can still render something.
//
// A [Planner] holds no per-call state; concurrent calls are independent.
package planner
