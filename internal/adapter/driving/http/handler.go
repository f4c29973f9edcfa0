// Package httphandler serves the local control API used by the CLI.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/artistban/internal/application"
	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/metrics"
)

// Controller is the subset of the run controller the API drives.
type Controller interface {
	Status() application.ControllerStatus
	ManualBlock(ctx context.Context, ref model.ArtistRef) (model.BlockOutcome, error)
}

// LedgerReader exposes read-only ledger facts for the status endpoint.
type LedgerReader interface {
	Size(ctx context.Context) (int, error)
	LastRunDate(ctx context.Context) (time.Time, bool, error)
}

// Handler is the HTTP driving adapter that serves the control API.
type Handler struct {
	ctrl   Controller
	ledger LedgerReader
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(ctrl Controller, ledger LedgerReader, logger *slog.Logger) *Handler {
	return &Handler{ctrl: ctrl, ledger: ledger, logger: logger}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/status", h.Status)
	mux.HandleFunc("POST /api/v1/block", h.Block)
	mux.Handle("GET /metrics", metrics.Handler())

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Status returns the controller state together with ledger facts.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	size, err := h.ledger.Size(r.Context())
	if err != nil {
		h.logger.Error("failed to read ledger size", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	lastRun, found, err := h.ledger.LastRunDate(r.Context())
	if err != nil {
		h.logger.Error("failed to read run marker", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toStatusResponse(h.ctrl.Status(), size)
	if found {
		resp.LastRunDate = lastRun.Format(application.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Block runs a manual single-artist block for the artist in the request body.
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref := model.ArtistRef{
		Name: strings.TrimSpace(req.Name),
		URL:  strings.TrimSpace(req.URL),
		ID:   strings.TrimSpace(req.ID),
	}
	id, err := ref.ResolveID()
	if err != nil {
		writeError(w, http.StatusBadRequest, "artist url must contain /artist/<id>")
		return
	}
	ref.ID = id

	outcome, err := h.ctrl.ManualBlock(r.Context(), ref)
	switch {
	case errors.Is(err, application.ErrMissingCredential):
		writeError(w, http.StatusConflict, "no credential captured yet")
		return
	case errors.Is(err, model.ErrNoArtistID):
		writeError(w, http.StatusBadRequest, "artist url must contain /artist/<id>")
		return
	case err != nil && outcome == "":
		h.logger.Error("manual block failed", "artist_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	case err != nil:
		// The write went through but the ledger did not record it.
		h.logger.Error("manual block not recorded", "artist_id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, BlockResponse{ArtistID: id, Outcome: string(outcome)})
}
