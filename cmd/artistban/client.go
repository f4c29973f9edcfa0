package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	httphandler "github.com/ericfisherdev/artistban/internal/adapter/driving/http"
	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// apiClient talks to a running "artistban serve" over its control API.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// Status fetches the controller status.
func (c *apiClient) Status(ctx context.Context) (httphandler.StatusResponse, error) {
	var out httphandler.StatusResponse
	var apiErr httphandler.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/v1/status")
	if err != nil {
		return out, fmt.Errorf("GET /api/v1/status: %w", err)
	}
	if resp.IsError() {
		return out, fmt.Errorf("GET /api/v1/status: %s: %s", resp.Status(), apiErr.Error)
	}
	return out, nil
}

// Block asks the server to block one artist right away.
func (c *apiClient) Block(ctx context.Context, ref model.ArtistRef) (httphandler.BlockResponse, error) {
	var out httphandler.BlockResponse
	var apiErr httphandler.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(httphandler.BlockRequest{Name: ref.Name, URL: ref.URL, ID: ref.ID}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/block")
	if err != nil {
		return out, fmt.Errorf("POST /api/v1/block: %w", err)
	}
	if resp.IsError() {
		return out, fmt.Errorf("POST /api/v1/block: %s: %s", resp.Status(), apiErr.Error)
	}
	return out, nil
}
