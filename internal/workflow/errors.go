package workflow

import "fmt"

// URL flow stages reported in FetchError.
const (
	FetchStageProbe      = "probe"
	FetchStageSubtitle   = "subtitle"
	FetchStageDownload   = "download"
	FetchStageTranscribe = "transcribe"
)

// FetchError reports a failure in the URL flow.
type FetchError struct {
	Stage string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
