// Package ffmpeg strips the audio track of a video into an MP3 file next to
// it (or in a configured output directory).
//
// The extractor probes the container first so a video without audio fails
// before ffmpeg runs, picks the speech track on multi-track sources, and writes
// through a temporary name so an interrupted run never leaves a truncated MP3
// that a later run would mistake for a finished one.
package ffmpeg
