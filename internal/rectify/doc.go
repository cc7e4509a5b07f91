// Package rectify performs perspective correction: it maps a detected (or
// user-adjusted) quadrilateral onto an upright output rectangle by computing
// a homography between the two corner sets and resampling the source image
// through the inverse transform.
//
// Rectification sits on a user-facing interaction path, so every call is
// bounded by a context deadline and returns a failure result instead of
// blocking; callers fall back to the unrectified source image on failure.
package rectify
