// Package transcription turns an audio file into a subtitle file.
//
// An Engine runs the speech-to-text tool (the openai-whisper CLI or whisperx
// through uvx) and returns a subtitles.Transcript. The Transcriber wraps an
// engine with the output bookkeeping: it skips targets that already exist
// unless forced, holds a per-target lock while working, and writes the
// rendered subtitle atomically.
package transcription
