// Package ytdlp drives the yt-dlp command-line downloader.
//
// Probe fetches a video's metadata (title, output filename, subtitle tracks)
// without downloading media. DownloadSubtitle fetches one subtitle track
// converted to SRT, and DownloadAudio fetches the best audio stream converted
// to MP3 while reporting progress. MatchSubtitle decides whether a native
// subtitle exists for the requested language.
package ytdlp
