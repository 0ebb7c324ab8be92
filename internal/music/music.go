// Package music serves the curated wellness playlists and Spotify oEmbed previews.
package music

import (
	"errors"
	"net/url"
	"strings"
)

// Playlist is a curated Spotify playlist.
type Playlist struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Note  string `json:"note"`
	URL   string `json:"url"`
}

var curated = []Playlist{
	{
		ID:    "focus",
		Title: "Deep Focus",
		Note:  "Use this during study and work blocks.",
		URL:   "https://open.spotify.com/playlist/37i9dQZF1DWZeKCadgRdKQ",
	},
	{
		ID:    "workout",
		Title: "Workout Boost",
		Note:  "High-energy picks for training sessions.",
		URL:   "https://open.spotify.com/playlist/37i9dQZF1DX70RN3TfWWJh",
	},
	{
		ID:    "recovery",
		Title: "Calm Recovery",
		Note:  "Light tracks for cooldown and stretching.",
		URL:   "https://open.spotify.com/playlist/37i9dQZF1DWU0ScTcjJBdj",
	},
}

// Playlists returns a copy of the curated playlists.
func Playlists() []Playlist {
	out := make([]Playlist, len(curated))
	copy(out, curated)
	return out
}

var (
	// ErrEmptyURL is returned when no link was supplied.
	ErrEmptyURL = errors.New("paste a Spotify track, album or playlist URL first")
	// ErrNotSpotify is returned for links outside Spotify.
	ErrNotSpotify = errors.New("use a Spotify URL, for example https://open.spotify.com/playlist/...")
)

// ValidateSpotifyURL trims raw and checks it is an open.spotify.com link or a spotify: URI.
func ValidateSpotifyURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", ErrEmptyURL
	}
	if strings.HasPrefix(clean, "spotify:") {
		return clean, nil
	}
	u, err := url.Parse(clean)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || !strings.EqualFold(u.Hostname(), "open.spotify.com") {
		return "", ErrNotSpotify
	}
	return clean, nil
}
