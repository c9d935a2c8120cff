// Package audio shells out to FFmpeg to produce bounded preview clips
// from downloaded audio files.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

const (
	previewBitrate = "128k"
	previewCodec   = "libmp3lame"

	// Trimming a local file is fast; anything longer means a wedged process.
	trimTimeout = time.Minute
)

var (
	ErrFileNotFound = fmt.Errorf("file not found")
	ErrFileEmpty    = fmt.Errorf("file is empty")
	ErrInvalidPath  = fmt.Errorf("invalid path")
)

// Trimmer produces a bounded-length clip from a source audio file.
type Trimmer interface {
	Trim(ctx context.Context, inputPath, outputPath string, maxSeconds int) error
}

// ffmpegError wraps FFmpeg command errors with additional context
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with truncated command output
func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// FFmpeg is the exec-backed Trimmer implementation.
type FFmpeg struct {
	bin string
}

// NewFFmpeg creates a trimmer invoking the given ffmpeg binary; empty
// means ffmpeg is resolved from PATH.
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

func validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// Trim re-encodes the first maxSeconds of inputPath to a fixed-bitrate
// mp3 at outputPath.
func (f *FFmpeg) Trim(ctx context.Context, inputPath, outputPath string, maxSeconds int) error {
	slog.Debug("Trimming audio", "input", inputPath, "output", outputPath, "seconds", maxSeconds)

	if err := validateFile(inputPath); err != nil {
		return fmt.Errorf("trim failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, trimTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.bin,
		"-y",
		"-i", inputPath,
		"-t", strconv.Itoa(maxSeconds),
		"-acodec", previewCodec,
		"-ab", previewBitrate,
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, output, err)
	}

	return nil
}
