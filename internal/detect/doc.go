// Package detect finds the rectangular boundary of a photographed print.
//
// # Strategies
//
// Detection runs one or more strategies from a closed, ordered set. Every
// strategy is a stateless function from an image (plus an optional
// orientation hint) to at most one candidate quadrilateral:
//
//   - quick: gradient edges on a downsampled frame, largest contour
//   - standard: full-resolution Canny edges, largest contour
//   - enhanced: contrast-boosted preprocessing driven by border color
//     statistics, then Canny edges
//   - contour: luminance-threshold segmentation, every sizable contour
//     scored, best candidate kept
//   - lines: Hough transform, dominant near-horizontal and near-vertical
//     line pairs intersected into corners
//
// A strategy that finds nothing reports that and never fails the others.
//
// # Adaptive Escalation
//
// The Selector runs the quick strategy first and decides from its confidence
// whether to stop (Excellent, >= 0.90), cross-check with one complementary
// strategy (Good, >= 0.80), or escalate to the full set and keep the single
// best result. Ties go to the earliest strategy in the fixed order. The
// thresholds are calibrated against the scoring weights: a 0.90 overall
// requires nearly every sub-metric at 0.85 or above simultaneously, which is
// what justifies trusting a single fast pass.
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin at top-left,
// X rightward, Y downward. Quadrilaterals from downsampled passes are scaled
// back to source pixel coordinates before they are scored or returned.
package detect
