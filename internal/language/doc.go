// Package language provides language code normalization and matching.
//
// Codes arrive from three places: the --lang flag, the settings file, and the
// subtitle track keys reported by yt-dlp (en, en-US, en-orig, eng). All of them
// are folded to ISO 639-1 here so the transcriber and the subtitle matcher
// agree on what "the same language" means. Unknown BCP 47 tags are resolved
// through golang.org/x/text.
package language
