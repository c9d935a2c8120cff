package downloader

import "context"

// Downloader fetches audio for a source and writes it next to basePath.
type Downloader interface {
	// Download retrieves audio-only content for the source (a direct URL
	// or a search expression) and returns the path of the produced file.
	// Output files are written as basePath plus the tool-chosen extension.
	Download(ctx context.Context, source, basePath string) (string, error)
}

// DurationProber looks up the length of a remote video without
// downloading it.
type DurationProber interface {
	// Duration returns the item length in seconds. Any error means the
	// duration is unknown; callers decide whether that is fatal.
	Duration(ctx context.Context, url string) (int, error)
}
