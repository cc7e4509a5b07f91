// Package imaging provides the low-level image primitives shared by the
// boundary-detection strategies: grayscale conversion, Gaussian smoothing,
// Canny edge extraction, contrast preprocessing, downsampling, and border
// color statistics.
//
// # Edge Detection
//
// EdgeMask implements the Canny algorithm (grayscale, Gaussian blur, Sobel
// gradients, non-maximum suppression, hysteresis thresholding) and returns a
// binary mask rather than an encoded image, since the detection strategies
// consume edges directly.
//
// Threshold selection guidance:
//   - Clean, high-contrast shots: low=50, high=150
//   - Photographs on busy backgrounds: low=100, high=200
//   - Low-light or noisy frames: low=75, high=175
//
// # Preprocessing
//
// EnhanceContrast and Downsample wrap the bild and imaging libraries for the
// strategy variants that need a contrast boost or a fast low-resolution pass.
// BorderStats summarizes the color separation between the frame border and
// the frame center, which the enhanced strategy uses to pick its parameters.
//
// # Loading
//
// ImageCache serves the server/CLI path only; the engine packages take
// decoded image.Image values and never touch the filesystem.
package imaging
