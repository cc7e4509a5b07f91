// Package score implements the confidence metric for candidate print
// boundaries.
//
// A candidate quadrilateral is scored against the image it was found in by
// four independent geometric sub-metrics, each in the range 0.0 to 1.0:
//
//   - Area ratio: polygon area (shoelace formula) over image area, mapped so
//     a 40-80% fill scores 1.0 and near-zero or near-full fills are penalized
//   - Rectangularity: opposite-edge-length balance plus interior angles
//     near 90 degrees
//   - Distribution: even corner spread around the centroid plus centering of
//     the quadrilateral within the frame
//   - Straightness: parallelism of opposite edges
//
// The overall confidence is a fixed weighted combination
// (0.30/0.30/0.20/0.20). Scoring is a pure function with no side effects;
// the same quadrilateral and dimensions always produce the same result.
//
// # Interpreting Scores
//
//   - >= 0.90: nearly every metric is simultaneously >= 0.85; the weighted
//     formula makes this mathematically necessary, which is why a single
//     fast detection pass can be trusted at this level
//   - >= 0.80: good, worth one cross-check with a complementary strategy
//   - below 0.80: escalate to the full strategy set
package score
