package model_test

import (
	"testing"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtistURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb", "4Z8W4fKeB5YxbusRsdQVPb"},
		{"query string", "https://open.spotify.com/artist/abc123?si=xyz", "abc123"},
		{"fragment", "https://open.spotify.com/artist/abc123#top", "abc123"},
		{"relative", "/artist/def456", "def456"},
		{"trailing path", "https://open.spotify.com/intl-de/artist/ghi789/discography", "ghi789"},
		{"upper case segment", "https://open.spotify.com/ARTIST/jkl012", "jkl012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.ParseArtistURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArtistURL_NoMatch(t *testing.T) {
	for _, raw := range []string{"", "https://open.spotify.com/album/abc", "https://open.spotify.com/artist/"} {
		_, err := model.ParseArtistURL(raw)
		assert.ErrorIs(t, err, model.ErrNoArtistID, "url %q", raw)
	}
}

func TestArtistRef_ResolveID(t *testing.T) {
	id, err := model.ArtistRef{ID: "explicit", URL: "https://open.spotify.com/artist/other"}.ResolveID()
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)

	id, err = model.ArtistRef{URL: "https://open.spotify.com/artist/fromurl"}.ResolveID()
	require.NoError(t, err)
	assert.Equal(t, "fromurl", id)

	_, err = model.ArtistRef{Name: "No Link"}.ResolveID()
	assert.ErrorIs(t, err, model.ErrNoArtistID)
}

func TestRunState_IsTerminal(t *testing.T) {
	assert.True(t, model.RunStateDone.IsTerminal())
	assert.True(t, model.RunStateSkipped.IsTerminal())
	assert.True(t, model.RunStateAborted.IsTerminal())
	assert.False(t, model.RunStateProcessing.IsTerminal())
	assert.False(t, model.RunStateIdle.IsTerminal())
}
