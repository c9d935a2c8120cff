// Package acquire runs the background jobs that produce track previews.
//
// A job downloads audio for a track with yt-dlp, trims it to a 30-second
// clip with ffmpeg and persists the preview location. Jobs run out-of-band
// of the request cycle: failures are logged and absorbed, never surfaced
// to the submitter, and never retried automatically. The manual re-trigger
// endpoint is the only recovery path. On shutdown in-flight jobs are
// hard-stopped with the process.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ochiba/soundshelf/internal/audio"
	"github.com/ochiba/soundshelf/internal/domain"
	"github.com/ochiba/soundshelf/internal/downloader"
	"github.com/ochiba/soundshelf/internal/scraper"
	"github.com/ochiba/soundshelf/internal/store"
)

const (
	previewSeconds = 30

	// Route prefix under which preview files are served.
	previewRoute = "/audio"
)

// Orchestrator coordinates preview acquisition for accepted tracks.
type Orchestrator struct {
	store    store.TrackStore
	dl       downloader.Downloader
	trimmer  audio.Trimmer
	scraper  scraper.ArtistScraper
	audioDir string

	// inflight guards against concurrent jobs for the same embed ID
	// racing the external tools on the same output path.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates an orchestrator writing preview files into audioDir.
func New(trackStore store.TrackStore, dl downloader.Downloader, trimmer audio.Trimmer, artistScraper scraper.ArtistScraper, audioDir string) *Orchestrator {
	return &Orchestrator{
		store:    trackStore,
		dl:       dl,
		trimmer:  trimmer,
		scraper:  artistScraper,
		audioDir: audioDir,
		inflight: make(map[string]struct{}),
	}
}

// Enqueue starts preview acquisition for the track in the background and
// returns immediately: the request path must never wait on network or
// subprocess work.
func (o *Orchestrator) Enqueue(track *domain.Track) {
	go o.run(track)
}

func (o *Orchestrator) run(track *domain.Track) {
	if !o.tryLock(track.EmbedID) {
		slog.Info("Acquisition already in flight, skipping", "embedId", track.EmbedID)
		return
	}
	defer o.unlock(track.EmbedID)

	if err := o.acquire(context.Background(), track); err != nil {
		slog.Error("Preview acquisition failed", "embedId", track.EmbedID, "error", err)
	}
}

func (o *Orchestrator) acquire(ctx context.Context, track *domain.Track) error {
	outputPath := o.previewPath(track.EmbedID)
	audioURL := previewRoute + "/" + track.EmbedID + ".mp3"

	// A preview produced by an earlier run only needs its reference
	// persisted; the write-once store guard makes duplicate triggers
	// converge without touching the external tools.
	if fileExists(outputPath) {
		slog.Info("Preview already on disk", "embedId", track.EmbedID)
		return o.store.SetAudioURL(ctx, track.ID, audioURL)
	}

	source := o.resolveSource(track)
	slog.Info("Starting preview acquisition", "embedId", track.EmbedID, "source", source)

	tempBase := filepath.Join(o.audioDir, track.EmbedID+"_full")
	downloaded, err := o.dl.Download(ctx, source, tempBase)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := o.trimmer.Trim(ctx, downloaded, outputPath, previewSeconds); err != nil {
		return fmt.Errorf("trim: %w", err)
	}

	if downloaded != outputPath {
		if err := os.Remove(downloaded); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove intermediate download", "path", downloaded, "error", err)
		}
	}

	if err := o.store.SetAudioURL(ctx, track.ID, audioURL); err != nil {
		return fmt.Errorf("persist preview url: %w", err)
	}

	slog.Info("Preview ready", "embedId", track.EmbedID, "audioUrl", audioURL)
	return nil
}

// resolveSource maps a track to a yt-dlp source. YouTube items download
// directly; Spotify tracks resolve through a first-result search built
// from title and artist, scraping the artist when none was declared.
func (o *Orchestrator) resolveSource(track *domain.Track) string {
	if track.Platform == domain.PlatformYouTube {
		return track.URL
	}

	artist := track.ArtistName()
	if artist == "" {
		artist = o.scraper.Artist(track.URL)
	}

	query := track.Title
	if artist != "" {
		query += " " + artist
	}
	return downloader.SearchSource(query)
}

func (o *Orchestrator) previewPath(embedID string) string {
	return filepath.Join(o.audioDir, embedID+".mp3")
}

func (o *Orchestrator) tryLock(embedID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[embedID]; busy {
		return false
	}
	o.inflight[embedID] = struct{}{}
	return true
}

func (o *Orchestrator) unlock(embedID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, embedID)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
