// Package stream drives boundary detection over a continuous frame feed.
//
// A Monitor owns independent detection state for the portrait and landscape
// target orientations, processes frames on a throttled cadence rather than
// per frame, and answers the overlay renderer's one question: should the
// alignment guide for a given orientation be hidden because the print was
// clearly detected in the other one.
//
// Frames flow through a single-slot queue that always holds only the most
// recent frame; under load intermediate frames are dropped so detection
// latency stays bounded.
package stream
