// Package input classifies the single command-line argument as a video file,
// an audio file, or a media URL, and derives sibling output paths from it.
//
// Classification is purely lexical. Nothing is opened or fetched, so a
// nonexistent file still classifies by its extension.
package input
