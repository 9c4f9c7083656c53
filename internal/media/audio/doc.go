// Package audio picks which audio stream of a video to transcribe.
//
// The selection prefers tracks tagged with the requested spoken language,
// avoids commentary and audio-description tracks, then favors the default
// disposition and earlier tracks. It depends only on internal/media/ffprobe
// and internal/language.
package audio
