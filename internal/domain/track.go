// Package domain contains the core entities of the SoundShelf crate.
package domain

import "time"

// Platforms a track can be submitted from.
const (
	PlatformSpotify = "spotify"
	PlatformYouTube = "youtube"
)

// Spotify item kinds. Only individual tracks qualify for a preview;
// albums and playlists are display-only, episodes and shows are rejected.
const (
	SpotifyTypeTrack    = "track"
	SpotifyTypeAlbum    = "album"
	SpotifyTypePlaylist = "playlist"
	SpotifyTypeEpisode  = "episode"
	SpotifyTypeShow     = "show"
)

// Track is a single crate entry: a submitted link plus display metadata
// and, once acquisition has run, the URL of its 30-second preview clip.
type Track struct {
	ID           string    `json:"id"`
	Platform     string    `json:"platform"`
	SpotifyType  string    `json:"spotify_type"`
	URL          string    `json:"url"`
	EmbedID      string    `json:"embed_id"`
	Title        string    `json:"title"`
	Artist       *string   `json:"artist"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	AudioURL     *string   `json:"audio_url"`
	Likes        int       `json:"likes"`
	CreatedAt    time.Time `json:"created_at"`
}

// NeedsPreview reports whether the track qualifies for audio acquisition.
// Playlist and album links would expand to many downloads, so only single
// items are eligible.
func (t *Track) NeedsPreview() bool {
	return t.Platform == PlatformYouTube ||
		(t.Platform == PlatformSpotify && t.SpotifyType == SpotifyTypeTrack)
}

// ArtistName returns the declared artist, or "" when none was submitted.
func (t *Track) ArtistName() string {
	if t.Artist == nil {
		return ""
	}
	return *t.Artist
}

// Submission is the intake payload for a new track.
type Submission struct {
	Platform     string  `json:"platform" binding:"required"`
	SpotifyType  string  `json:"spotify_type"`
	URL          string  `json:"url" binding:"required"`
	EmbedID      string  `json:"embed_id" binding:"required"`
	Title        string  `json:"title" binding:"required"`
	Artist       *string `json:"artist"`
	ThumbnailURL *string `json:"thumbnail_url"`
}
