// Package scraper extracts display metadata from track pages.
package scraper

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly"
)

const spotifyURLPrefix = "https://open.spotify.com/"

// ArtistScraper resolves a display artist for a submitted page URL.
// Implementations are best-effort: any failure yields an empty string and
// must never propagate.
type ArtistScraper interface {
	Artist(pageURL string) string
}

// SpotifyScraper reads the artist from a Spotify page's og:description
// meta tag. The oEmbed payload the client uses does not always include
// the artist, so acquisition falls back to this scrape to build a decent
// search query.
type SpotifyScraper struct {
	timeout time.Duration
}

// NewSpotifyScraper creates a scraper with a 10 second request timeout.
func NewSpotifyScraper() *SpotifyScraper {
	return &SpotifyScraper{timeout: 10 * time.Second}
}

// Artist returns the artist scraped from the Spotify page, or "" for
// non-Spotify URLs and on any fetch or parse failure.
func (s *SpotifyScraper) Artist(pageURL string) string {
	if !strings.HasPrefix(pageURL, spotifyURLPrefix) {
		return ""
	}
	return s.scrape(pageURL)
}

func (s *SpotifyScraper) scrape(pageURL string) string {
	c := colly.NewCollector()
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	var artist string
	c.OnHTML(`meta[property="og:description"]`, func(e *colly.HTMLElement) {
		artist = artistFromDescription(e.Attr("content"))
	})

	if err := c.Visit(pageURL); err != nil {
		slog.Debug("artist scrape failed", "url", pageURL, "error", err)
		return ""
	}
	return artist
}

// artistFromDescription extracts the artist names from a Spotify
// og:description, formatted "Artist1, Artist2 · Album · Song · Year".
func artistFromDescription(description string) string {
	artists, _, _ := strings.Cut(description, "·")
	return strings.TrimSpace(artists)
}
