package application

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// IssueURL builds the prefilled "report AI artist" issue form on the list's
// GitHub repository.
func IssueURL(repoFullName string, ref model.ArtistRef) string {
	q := url.Values{}
	q.Set("template", "ai-artist.yml")
	q.Set("title", "[AI-Artist] "+ref.Name)
	q.Set("artist_url", ref.URL)
	q.Set("artist_name", ref.Name)
	return fmt.Sprintf("https://github.com/%s/issues/new?%s", repoFullName, q.Encode())
}

// MailURL builds a mailto link reporting the artist to the list maintainer.
func MailURL(address string, ref model.ArtistRef) (string, error) {
	if address == "" {
		return "", errors.New("no report email address configured")
	}
	subject := escapeComponent("AI Artist: " + ref.Name)
	body := escapeComponent(fmt.Sprintf("Report: %s - %s", ref.Name, ref.URL))
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", address, subject, body), nil
}

// ClipboardLine formats the artist as a list line, "<name>,<id>". Commas in the
// name are replaced so the line stays two fields wide.
func ClipboardLine(ref model.ArtistRef) (string, error) {
	id, err := ref.ResolveID()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(ref.Name, ",", " ") + "," + id, nil
}

// escapeComponent percent-encodes s with spaces as %20, which mail clients
// decode reliably, unlike "+".
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
