// Package store provides durable persistence for crate tracks.
package store

import (
	"context"
	"errors"

	"github.com/ochiba/soundshelf/internal/domain"
)

var (
	ErrNotFound       = errors.New("track not found")
	ErrDuplicateEmbed = errors.New("track already exists")
)

// TrackStore is the persistence boundary consumed by the validator, the
// acquisition orchestrator and the HTTP handlers. Implementations must
// enforce embed ID uniqueness at insert time and keep audio URL updates
// write-once.
type TrackStore interface {
	// Create inserts a new track. Returns ErrDuplicateEmbed when another
	// track already holds the same embed ID.
	Create(ctx context.Context, track *domain.Track) error

	GetByID(ctx context.Context, id string) (*domain.Track, error)

	GetByEmbedID(ctx context.Context, embedID string) (*domain.Track, error)

	// List returns all tracks ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.Track, error)

	Count(ctx context.Context) (int, error)

	// IncrementLikes adds one like and returns the updated track.
	IncrementLikes(ctx context.Context, id string) (*domain.Track, error)

	// SetAudioURL records the preview location for a track. The field is
	// write-once: if a value is already present the call is a no-op.
	SetAudioURL(ctx context.Context, id, audioURL string) error
}
