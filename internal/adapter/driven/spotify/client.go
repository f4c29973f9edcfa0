// Package spotify implements the BlockWriter and AccountResolver ports against
// the streaming service's web client APIs.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.BlockWriter     = (*Client)(nil)
	_ driven.AccountResolver = (*Client)(nil)
)

const (
	DefaultWriteURL = "https://spclient.wg.spotify.com/collection/v2/write"
	DefaultAPIURL   = "https://api.spotify.com"

	banSet = "artistban"
)

// Client talks to the collection-write endpoint and the public Web API.
type Client struct {
	http     *resty.Client
	writeURL string
	apiURL   string
}

// NewClient creates a Client with the given request timeout. A zero timeout
// leaves requests bounded only by the caller's context.
func NewClient(writeURL, apiURL string, timeout time.Duration) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, writeURL, apiURL)
}

// NewClientWithHTTPClient creates a Client on top of a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, writeURL, apiURL string) *Client {
	client := resty.NewWithClient(httpClient).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     client,
		writeURL: writeURL,
		apiURL:   strings.TrimSuffix(apiURL, "/"),
	}
}

type writeItem struct {
	URI string `json:"uri"`
}

type writeRequest struct {
	Username string      `json:"username"`
	Set      string      `json:"set"`
	Items    []writeItem `json:"items"`
}

// BlockArtist adds the artist to the account's ban set. A 401 response is
// reported as driven.ErrAuthExpired; any other non-2xx status is an error.
func (c *Client) BlockArtist(ctx context.Context, cred model.Credential, artistID string) error {
	body := writeRequest{
		Username: cred.Account,
		Set:      banSet,
		Items:    []writeItem{{URI: ArtistURI(artistID)}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", cred.Token).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("market", "from_token").
		SetBody(body).
		Post(c.writeURL)
	if err != nil {
		return fmt.Errorf("block artist %s: %w", artistID, err)
	}

	return classify(resp, "block artist "+artistID)
}

type meResponse struct {
	ID string `json:"id"`
}

// ResolveAccount returns the account ID the token belongs to.
func (c *Client) ResolveAccount(ctx context.Context, token string) (string, error) {
	var me meResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", token).
		SetResult(&me).
		Get(c.apiURL + "/v1/me")
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}
	if err := classify(resp, "resolve account"); err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", fmt.Errorf("resolve account: response has no id")
	}
	return me.ID, nil
}

// ArtistURI returns the collection URI for an artist ID.
func ArtistURI(artistID string) string {
	return "spotify:artist:" + artistID
}

func classify(resp *resty.Response, op string) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, driven.ErrAuthExpired)
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode(), truncate(resp.String(), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
