// Package preflight provides readiness checks for the external tools and
// filesystem paths a video2sub run depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls Ensure before a job starts. A missing tool or
//     a full disk fails the run before any download or extraction begins.
//   - The CLI "video2sub doctor" command uses RunAll and CheckSystemDeps to
//     display a readiness table.
//
// Requirements are derived from the input kind: a local audio file only needs
// the transcription engine, while URLs also need yt-dlp and ffmpeg.
package preflight
