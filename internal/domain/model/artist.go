package model

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoArtistID is returned when an artist URL does not carry an identifier.
var ErrNoArtistID = errors.New("no artist id in url")

var artistIDPattern = regexp.MustCompile(`(?i)/artist/([^\s/?#]+)`)

// ArtistRef identifies the artist a user is acting on, as shown by the host.
type ArtistRef struct {
	Name string
	URL  string
	ID   string
}

// ParseArtistURL extracts the artist identifier from a profile URL such as
// https://open.spotify.com/artist/0abc123?si=x.
func ParseArtistURL(rawURL string) (string, error) {
	m := artistIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrNoArtistID, rawURL)
	}
	return m[1], nil
}

// ResolveID returns the ref's ID, extracting it from URL when ID is empty.
func (a ArtistRef) ResolveID() (string, error) {
	if a.ID != "" {
		return a.ID, nil
	}
	return ParseArtistURL(a.URL)
}
