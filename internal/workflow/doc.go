// Package workflow turns one classified input into subtitle files.
//
// Runner.Run classifies the raw argument and dispatches it: videos go through
// the ffmpeg extractor and then the transcriber, audio files go straight to
// the transcriber, and URLs go to the Fetcher. The Fetcher prefers a native
// subtitle track published with the video and only downloads audio for
// transcription when none matches the requested language.
//
// Every stage honors the skip-if-exists rule: an output that is already on
// disk is reused unless JobOptions.Force is set, so a failed run can simply be
// repeated.
package workflow
