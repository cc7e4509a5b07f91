// Package geometry provides the 2D primitives shared by the detection and
// rectification pipeline: points, semantically labeled quadrilaterals, and
// the polygon predicates (area, simplicity, degeneracy) the pipeline uses to
// filter candidates before scoring.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Quadrilateral Invariants
//
// A quadrilateral accepted by the pipeline must be simple (its opposite edges
// do not cross) and non-degenerate (non-trivial area, no three near-collinear
// corners). Candidates from unordered corner proposals should go through
// OrderCorners first, then Validate.
package geometry
