// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect runs ffprobe through a services.CommandRunner; Parse decodes an
// already captured document. Helper methods on Result provide stream counts
// and duration parsing.
package ffprobe
