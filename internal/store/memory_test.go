package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochiba/soundshelf/internal/domain"
)

func newTrack(id, embedID string, createdAt time.Time) *domain.Track {
	return &domain.Track{
		ID:          id,
		Platform:    domain.PlatformYouTube,
		SpotifyType: domain.SpotifyTypeTrack,
		URL:         "https://youtu.be/" + embedID,
		EmbedID:     embedID,
		Title:       "Test Track " + embedID,
		CreatedAt:   createdAt,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	track := newTrack("id-1", "abc123", time.Now())
	require.NoError(t, s.Create(ctx, track))

	byID, err := s.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", byID.EmbedID)

	byEmbed, err := s.GetByEmbedID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byEmbed.ID)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDuplicateEmbedID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTrack("id-1", "dup", time.Now())))
	err := s.Create(ctx, newTrack("id-2", "dup", time.Now()))
	assert.ErrorIs(t, err, ErrDuplicateEmbed)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.Create(ctx, newTrack("id-1", "oldest", base.Add(-2*time.Hour))))
	require.NoError(t, s.Create(ctx, newTrack("id-2", "newest", base)))
	require.NoError(t, s.Create(ctx, newTrack("id-3", "middle", base.Add(-time.Hour))))

	tracks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "newest", tracks[0].EmbedID)
	assert.Equal(t, "middle", tracks[1].EmbedID)
	assert.Equal(t, "oldest", tracks[2].EmbedID)
}

func TestMemoryStoreIncrementLikes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTrack("id-1", "likeme", time.Now())))

	track, err := s.IncrementLikes(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, 1, track.Likes)

	track, err = s.IncrementLikes(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, 2, track.Likes)

	_, err = s.IncrementLikes(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSetAudioURLWriteOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newTrack("id-1", "preview", time.Now())))

	require.NoError(t, s.SetAudioURL(ctx, "id-1", "/audio/preview.mp3"))

	// A second write must not overwrite the existing value.
	require.NoError(t, s.SetAudioURL(ctx, "id-1", "/audio/other.mp3"))

	track, err := s.GetByID(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, track.AudioURL)
	assert.Equal(t, "/audio/preview.mp3", *track.AudioURL)

	assert.ErrorIs(t, s.SetAudioURL(ctx, "missing", "/audio/x.mp3"), ErrNotFound)
}
