// Package deps checks that the external command-line tools video2sub drives
// (ffmpeg, ffprobe, yt-dlp, whisper or uvx) can be found on PATH.
package deps
