package application

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
	"github.com/ericfisherdev/artistban/internal/metrics"
)

// BlockExecutor submits one block write and classifies the result. It never
// retries; an identifier that fails stays out of the ledger and is picked up
// by a later pass.
type BlockExecutor struct {
	writer  driven.BlockWriter
	limiter *rate.Limiter
}

// NewBlockExecutor creates a BlockExecutor. limiter paces writes and may be
// nil for no pacing.
func NewBlockExecutor(writer driven.BlockWriter, limiter *rate.Limiter) *BlockExecutor {
	return &BlockExecutor{writer: writer, limiter: limiter}
}

// Execute blocks artistID with cred and returns the classified outcome.
func (e *BlockExecutor) Execute(ctx context.Context, mode model.RunMode, cred model.Credential, artistID string) model.BlockOutcome {
	outcome := e.execute(ctx, cred, artistID)
	metrics.BlockTotal.WithLabelValues(string(mode), string(outcome)).Inc()
	return outcome
}

func (e *BlockExecutor) execute(ctx context.Context, cred model.Credential, artistID string) model.BlockOutcome {
	if !cred.Valid() {
		slog.Error("block skipped", "artist_id", artistID, "error", ErrMissingCredential)
		return model.BlockOutcomeFailure
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			slog.Error("block aborted while waiting for rate limiter", "artist_id", artistID, "error", err)
			return model.BlockOutcomeFailure
		}
	}

	err := e.writer.BlockArtist(ctx, cred, artistID)
	switch {
	case err == nil:
		return model.BlockOutcomeSuccess
	case errors.Is(err, driven.ErrAuthExpired):
		slog.Warn("block rejected, credential expired", "artist_id", artistID)
		return model.BlockOutcomeAuthExpired
	default:
		slog.Error("block failed", "artist_id", artistID, "error", err)
		return model.BlockOutcomeFailure
	}
}
