package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"video2sub/internal/ytdlp"
)

// downloadProgress renders yt-dlp audio download updates as a byte progress
// bar. The bar starts as a spinner until yt-dlp reports a size.
type downloadProgress struct {
	bar     *progressbar.ProgressBar
	total   int64
	started bool
}

func newDownloadProgress(w io.Writer) *downloadProgress {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("downloading audio"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &downloadProgress{bar: bar}
}

func (p *downloadProgress) Update(update ytdlp.Progress) {
	p.started = true
	if update.Total > 0 && update.Total != p.total {
		p.total = update.Total
		p.bar.ChangeMax64(update.Total)
	}
	_ = p.bar.Set64(update.Downloaded)
}

// Finish clears the bar; local inputs never start one.
func (p *downloadProgress) Finish() {
	if !p.started {
		return
	}
	_ = p.bar.Finish()
}
