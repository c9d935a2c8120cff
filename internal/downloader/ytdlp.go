// Package downloader wraps yt-dlp for audio retrieval and metadata probes.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// Hard wall-clock limit for a single download.
	defaultDownloadTimeout = 2 * time.Minute

	// Limit for a metadata-only probe.
	defaultProbeTimeout = 30 * time.Second

	audioQuality = "128K"
	maxFileSize  = "50M"
)

var (
	ErrToolFailed   = errors.New("yt-dlp failed")
	ErrNoOutputFile = errors.New("no output file produced")
)

// SearchSource builds a first-result search expression for content that
// has no directly downloadable URL, such as Spotify tracks.
func SearchSource(query string) string {
	return "ytsearch1:" + query
}

// YtDlp invokes the yt-dlp binary for downloads and duration probes.
type YtDlp struct {
	bin             string
	ffmpegDir       string
	downloadTimeout time.Duration
	probeTimeout    time.Duration
}

// NewYtDlp creates a yt-dlp wrapper. ffmpegPath points at the ffmpeg
// binary yt-dlp should use for extraction; empty means yt-dlp resolves
// ffmpeg from PATH.
func NewYtDlp(bin, ffmpegPath string) *YtDlp {
	if bin == "" {
		bin = "yt-dlp"
	}
	var ffmpegDir string
	if ffmpegPath != "" {
		ffmpegDir = filepath.Dir(ffmpegPath)
	}
	return &YtDlp{
		bin:             bin,
		ffmpegDir:       ffmpegDir,
		downloadTimeout: defaultDownloadTimeout,
		probeTimeout:    defaultProbeTimeout,
	}
}

// Download extracts audio-only mp3 at bounded quality and size. Playlist
// expansion is disabled even when the source resolves to a playlist.
func (y *YtDlp) Download(ctx context.Context, source, basePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.downloadTimeout)
	defer cancel()

	args := []string{
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", audioQuality,
		"-o", basePath + ".%(ext)s",
		"--no-playlist",
		"--max-filesize", maxFileSize,
	}
	if y.ffmpegDir != "" {
		args = append(args, "--ffmpeg-location", y.ffmpegDir)
	}
	args = append(args, source)

	slog.Debug("starting yt-dlp download", "source", source, "basePath", basePath)

	cmd := exec.CommandContext(ctx, y.bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v: %s", ErrToolFailed, err, truncateOutput(output))
	}

	return findOutputFile(basePath)
}

// Duration probes the item length in seconds via a metadata-only dump.
func (y *YtDlp) Duration(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, y.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.bin, "--dump-json", "--no-download", "--no-playlist", url)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}

	return parseDuration(output)
}

// parseDuration extracts the duration field from a yt-dlp JSON dump.
func parseDuration(dump []byte) (int, error) {
	var info struct {
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(dump, &info); err != nil {
		return 0, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	return int(info.Duration), nil
}

// findOutputFile locates the file yt-dlp wrote for basePath. The expected
// extension is mp3, but extraction can fall back to the source format.
func findOutputFile(basePath string) (string, error) {
	mp3 := basePath + ".mp3"
	if _, err := os.Stat(mp3); err == nil {
		return mp3, nil
	}

	matches, err := filepath.Glob(basePath + ".*")
	if err != nil {
		return "", fmt.Errorf("failed to scan for output files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoOutputFile, basePath)
	}
	return matches[0], nil
}

func truncateOutput(output []byte) string {
	const maxLen = 500
	if len(output) > maxLen {
		return string(output[:maxLen]) + "..."
	}
	return string(output)
}
