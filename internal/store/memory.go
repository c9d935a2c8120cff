package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ochiba/soundshelf/internal/domain"
)

// MemoryStore is an in-memory TrackStore used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Track
	byEmbed map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*domain.Track),
		byEmbed: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, track *domain.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmbed[track.EmbedID]; exists {
		return ErrDuplicateEmbed
	}

	copied := *track
	s.byID[track.ID] = &copied
	s.byEmbed[track.EmbedID] = track.ID
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	track, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *track
	return &copied, nil
}

func (s *MemoryStore) GetByEmbedID(_ context.Context, embedID string) (*domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmbed[embedID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := make([]*domain.Track, 0, len(s.byID))
	for _, track := range s.byID {
		copied := *track
		tracks = append(tracks, &copied)
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.After(tracks[j].CreatedAt)
	})

	return tracks, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryStore) IncrementLikes(_ context.Context, id string) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	track.Likes++
	copied := *track
	return &copied, nil
}

func (s *MemoryStore) SetAudioURL(_ context.Context, id, audioURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if track.AudioURL != nil {
		return nil
	}
	track.AudioURL = &audioURL
	return nil
}
