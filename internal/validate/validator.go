// Package validate runs the submission acceptance pipeline.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ochiba/soundshelf/internal/domain"
	"github.com/ochiba/soundshelf/internal/downloader"
	"github.com/ochiba/soundshelf/internal/store"
)

const (
	MaxTracks = 500

	maxTitleLen     = 300
	maxArtistLen    = 300
	maxThumbnailLen = 2000

	// 7 minutes: previews come from music tracks, not movies or podcasts.
	maxDurationSeconds = 420
	minDurationSeconds = 10
)

var (
	embedIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	youtubeURLPattern = regexp.MustCompile(`^https://(www\.)?(youtube\.com|youtu\.be)/`)
)

const spotifyURLPrefix = "https://open.spotify.com/"

// Validator accepts or rejects submissions. Checks run in a fixed order
// and short-circuit on the first rejection; the duration probe is the only
// network-dependent step and soft-fails to unknown.
type Validator struct {
	store  store.TrackStore
	prober downloader.DurationProber
	filter *WordFilter
}

// New creates a validator backed by the given store and duration prober.
func New(trackStore store.TrackStore, prober downloader.DurationProber) *Validator {
	return &Validator{
		store:  trackStore,
		prober: prober,
		filter: NewWordFilter(blockedTerms),
	}
}

// Validate runs the full pipeline. A nil return means the submission is
// accepted. Rejections unwrap to one of the taxonomy sentinels; any other
// error is an internal failure.
func (v *Validator) Validate(ctx context.Context, sub *domain.Submission) error {
	if err := v.checkShape(sub); err != nil {
		return err
	}
	if err := v.checkCapacity(ctx); err != nil {
		return err
	}
	if err := checkURL(sub); err != nil {
		return err
	}
	if err := v.checkDenylist(sub); err != nil {
		return err
	}
	if err := v.checkDuration(ctx, sub); err != nil {
		return err
	}
	if err := checkSpotifyType(sub); err != nil {
		return err
	}
	return v.checkDuplicate(ctx, sub)
}

func (v *Validator) checkShape(sub *domain.Submission) error {
	if sub.Platform != domain.PlatformSpotify && sub.Platform != domain.PlatformYouTube {
		return reject(ErrInvalidInput, "Platform must be spotify or youtube")
	}
	if len(sub.Title) > maxTitleLen {
		return reject(ErrInvalidInput, "Title too long")
	}
	if sub.Artist != nil && len(*sub.Artist) > maxArtistLen {
		return reject(ErrInvalidInput, "Artist name too long")
	}
	if sub.ThumbnailURL != nil && len(*sub.ThumbnailURL) > maxThumbnailLen {
		return reject(ErrInvalidInput, "Thumbnail URL too long")
	}
	if !embedIDPattern.MatchString(sub.EmbedID) {
		return reject(ErrInvalidInput, "Invalid track ID")
	}
	return nil
}

func (v *Validator) checkCapacity(ctx context.Context) error {
	count, err := v.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count tracks: %w", err)
	}
	if count >= MaxTracks {
		return reject(ErrCapacityExceeded, "The crate is full! No more tracks can be added.")
	}
	return nil
}

func checkURL(sub *domain.Submission) error {
	switch sub.Platform {
	case domain.PlatformSpotify:
		if !strings.HasPrefix(sub.URL, spotifyURLPrefix) {
			return reject(ErrInvalidInput, "Invalid Spotify URL")
		}
	case domain.PlatformYouTube:
		if !youtubeURLPattern.MatchString(sub.URL) {
			return reject(ErrInvalidInput, "Invalid YouTube URL")
		}
	}
	return nil
}

func (v *Validator) checkDenylist(sub *domain.Submission) error {
	text := sub.Title
	if sub.Artist != nil {
		text += " " + *sub.Artist
	}
	if term, matched := v.filter.Match(text); matched {
		// The matched term stays out of the response to avoid filter probing.
		slog.Info("submission rejected by denylist", "embedId", sub.EmbedID, "term", term)
		return reject(ErrPolicyViolation, "That track was rejected — keep it clean!")
	}
	return nil
}

func (v *Validator) checkDuration(ctx context.Context, sub *domain.Submission) error {
	if sub.Platform != domain.PlatformYouTube {
		return nil
	}

	duration, err := v.prober.Duration(ctx, sub.URL)
	if err != nil {
		// Unknown duration never blocks a submission.
		slog.Warn("duration probe failed", "url", sub.URL, "error", err)
		return nil
	}

	if duration > maxDurationSeconds {
		minutes := duration / 60
		return reject(ErrPolicyViolation,
			"That's %d minutes long — max is 7. Music only, no movies or podcasts!", minutes)
	}
	if duration < minDurationSeconds {
		return reject(ErrPolicyViolation, "That's too short — must be at least 10 seconds.")
	}
	return nil
}

func checkSpotifyType(sub *domain.Submission) error {
	if sub.Platform != domain.PlatformSpotify {
		return nil
	}
	if sub.SpotifyType == domain.SpotifyTypeEpisode || sub.SpotifyType == domain.SpotifyTypeShow {
		return reject(ErrPolicyViolation, "Podcasts and episodes aren't allowed — music only!")
	}
	return nil
}

func (v *Validator) checkDuplicate(ctx context.Context, sub *domain.Submission) error {
	_, err := v.store.GetByEmbedID(ctx, sub.EmbedID)
	if err == nil {
		return reject(ErrConflict, "Track already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check for duplicate: %w", err)
	}
	return nil
}
