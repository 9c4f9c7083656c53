// Package services defines shared utilities consumed by the workflow runner
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and input kinds for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent process exit codes.
//   - A thin CommandRunner abstraction that makes ffmpeg, whisper, and yt-dlp
//     invocations testable.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, cancellation) stays uniform across the tool.
package services
