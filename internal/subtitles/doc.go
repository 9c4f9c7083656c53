// Package subtitles holds the transcript model shared by the transcription
// engines and the native subtitle fetcher, plus the writers that render it.
//
// A Transcript is a list of timed segments. Engines produce one from their JSON
// output; ParseCues produces one from an SRT or WebVTT file downloaded from a
// video host. Either way the same writer renders the requested Format, so the
// output of a run does not depend on where the text came from.
package subtitles
