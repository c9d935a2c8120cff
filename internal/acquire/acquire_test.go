package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochiba/soundshelf/internal/domain"
	"github.com/ochiba/soundshelf/internal/store"
)

// fakeDownloader records calls and writes a fake full-length download.
type fakeDownloader struct {
	mu      sync.Mutex
	calls   int
	sources []string
	err     error
}

func (d *fakeDownloader) Download(_ context.Context, source, basePath string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.sources = append(d.sources, source)
	if d.err != nil {
		return "", d.err
	}
	path := basePath + ".mp3"
	if err := os.WriteFile(path, []byte("full-length audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// fakeTrimmer copies the input to the output, truncated in spirit.
type fakeTrimmer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTrimmer) Trim(_ context.Context, inputPath, outputPath string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data[:5], 0644)
}

type fakeScraper struct {
	artist string
	calls  int
}

func (s *fakeScraper) Artist(string) string {
	s.calls++
	return s.artist
}

func youtubeTrack(id, embedID string) *domain.Track {
	return &domain.Track{
		ID:          id,
		Platform:    domain.PlatformYouTube,
		SpotifyType: domain.SpotifyTypeTrack,
		URL:         "https://youtu.be/" + embedID,
		EmbedID:     embedID,
		Title:       "Test Track",
		CreatedAt:   time.Now(),
	}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *store.MemoryStore, *fakeDownloader, *fakeTrimmer, *fakeScraper) {
	memStore := store.NewMemory()
	dl := &fakeDownloader{}
	trimmer := &fakeTrimmer{}
	sc := &fakeScraper{}
	o := New(memStore, dl, trimmer, sc, t.TempDir())
	return o, memStore, dl, trimmer, sc
}

func TestAcquireProducesPreview(t *testing.T) {
	o, memStore, dl, trimmer, _ := newTestOrchestrator(t)
	ctx := context.Background()

	track := youtubeTrack("id-1", "vid01")
	require.NoError(t, memStore.Create(ctx, track))

	require.NoError(t, o.acquire(ctx, track))

	assert.Equal(t, 1, dl.calls)
	assert.Equal(t, []string{"https://youtu.be/vid01"}, dl.sources)
	assert.Equal(t, 1, trimmer.calls)

	// Preview exists, intermediate download is gone.
	assert.FileExists(t, o.previewPath("vid01"))
	assert.NoFileExists(t, filepath.Join(o.audioDir, "vid01_full.mp3"))

	stored, err := memStore.GetByID(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, stored.AudioURL)
	assert.Equal(t, "/audio/vid01.mp3", *stored.AudioURL)
}

func TestAcquireIdempotentWhenPreviewExists(t *testing.T) {
	o, memStore, dl, trimmer, _ := newTestOrchestrator(t)
	ctx := context.Background()

	track := youtubeTrack("id-1", "vid01")
	require.NoError(t, memStore.Create(ctx, track))
	require.NoError(t, os.WriteFile(o.previewPath("vid01"), []byte("clip"), 0644))

	require.NoError(t, o.acquire(ctx, track))
	require.NoError(t, o.acquire(ctx, track))

	assert.Zero(t, dl.calls)
	assert.Zero(t, trimmer.calls)

	stored, err := memStore.GetByID(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, stored.AudioURL)
	assert.Equal(t, "/audio/vid01.mp3", *stored.AudioURL)
}

func TestAcquireSpotifySourceResolution(t *testing.T) {
	o, memStore, dl, _, sc := newTestOrchestrator(t)
	ctx := context.Background()

	declared := "Bonobo"
	track := &domain.Track{
		ID:          "id-1",
		Platform:    domain.PlatformSpotify,
		SpotifyType: domain.SpotifyTypeTrack,
		URL:         "https://open.spotify.com/track/abc",
		EmbedID:     "abc",
		Title:       "Kerala",
		Artist:      &declared,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, memStore.Create(ctx, track))
	require.NoError(t, o.acquire(ctx, track))

	// Declared artist goes straight into the search query, no scrape.
	assert.Equal(t, []string{"ytsearch1:Kerala Bonobo"}, dl.sources)
	assert.Zero(t, sc.calls)
}

func TestAcquireScrapesMissingArtist(t *testing.T) {
	o, memStore, dl, _, sc := newTestOrchestrator(t)
	sc.artist = "Caribou"
	ctx := context.Background()

	track := &domain.Track{
		ID:          "id-1",
		Platform:    domain.PlatformSpotify,
		SpotifyType: domain.SpotifyTypeTrack,
		URL:         "https://open.spotify.com/track/abc",
		EmbedID:     "abc",
		Title:       "Odessa",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, memStore.Create(ctx, track))
	require.NoError(t, o.acquire(ctx, track))

	assert.Equal(t, 1, sc.calls)
	assert.Equal(t, []string{"ytsearch1:Odessa Caribou"}, dl.sources)
}

func TestAcquireScrapeFailureFallsBackToTitle(t *testing.T) {
	o, memStore, dl, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	track := &domain.Track{
		ID:          "id-1",
		Platform:    domain.PlatformSpotify,
		SpotifyType: domain.SpotifyTypeTrack,
		URL:         "https://open.spotify.com/track/abc",
		EmbedID:     "abc",
		Title:       "Odessa",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, memStore.Create(ctx, track))
	require.NoError(t, o.acquire(ctx, track))

	assert.Equal(t, []string{"ytsearch1:Odessa"}, dl.sources)
}

func TestAcquireDownloadFailureLeavesTrackPending(t *testing.T) {
	o, memStore, dl, trimmer, _ := newTestOrchestrator(t)
	dl.err = errors.New("tool exited 1")
	ctx := context.Background()

	track := youtubeTrack("id-1", "vid01")
	require.NoError(t, memStore.Create(ctx, track))

	err := o.acquire(ctx, track)
	assert.Error(t, err)
	assert.Zero(t, trimmer.calls)

	stored, getErr := memStore.GetByID(ctx, "id-1")
	require.NoError(t, getErr)
	assert.Nil(t, stored.AudioURL)
	assert.NoFileExists(t, o.previewPath("vid01"))
}

func TestAcquireTrimFailureLeavesTrackPending(t *testing.T) {
	o, memStore, _, trimmer, _ := newTestOrchestrator(t)
	trimmer.err = errors.New("ffmpeg exited 1")
	ctx := context.Background()

	track := youtubeTrack("id-1", "vid01")
	require.NoError(t, memStore.Create(ctx, track))

	assert.Error(t, o.acquire(ctx, track))

	stored, err := memStore.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, stored.AudioURL)
}

func TestInflightLockDropsDuplicateJobs(t *testing.T) {
	o, _, _, _, _ := newTestOrchestrator(t)

	require.True(t, o.tryLock("vid01"))
	assert.False(t, o.tryLock("vid01"))
	assert.True(t, o.tryLock("vid02"))

	o.unlock("vid01")
	assert.True(t, o.tryLock("vid01"))
}

func TestEnqueueRunsInBackground(t *testing.T) {
	o, memStore, _, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	track := youtubeTrack("id-1", "vid01")
	require.NoError(t, memStore.Create(ctx, track))

	o.Enqueue(track)

	require.Eventually(t, func() bool {
		stored, err := memStore.GetByID(ctx, "id-1")
		return err == nil && stored.AudioURL != nil
	}, 2*time.Second, 10*time.Millisecond)
}
