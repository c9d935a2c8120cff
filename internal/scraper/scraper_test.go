package scraper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtistFromDescription(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		expected    string
	}{
		{"full metadata", "Bicep · Isles · Apricots · 2021", "Bicep"},
		{"multiple artists", "Overmono, Joy Orbison · Single · 2023", "Overmono, Joy Orbison"},
		{"no delimiter", "Some free-form description", "Some free-form description"},
		{"empty", "", ""},
		{"leading whitespace", "  Kiasmos · Blurred EP", "Kiasmos"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, artistFromDescription(tc.description))
		})
	}
}

func TestArtistIgnoresNonSpotifyURLs(t *testing.T) {
	s := NewSpotifyScraper()
	assert.Equal(t, "", s.Artist("https://www.youtube.com/watch?v=abc"))
	assert.Equal(t, "", s.Artist("https://example.com/track/1"))
}

func TestScrapeReadsMetaTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<meta property="og:description" content="Floating Points · Crush · LesAlpx · 2019"/>
			</head><body></body></html>`))
	}))
	defer srv.Close()

	s := NewSpotifyScraper()
	assert.Equal(t, "Floating Points", s.scrape(srv.URL))
}

func TestScrapeSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewSpotifyScraper()
	assert.Equal(t, "", s.scrape(srv.URL))

	// Connection failures are swallowed too.
	srv.Close()
	assert.Equal(t, "", s.scrape(srv.URL))
}
