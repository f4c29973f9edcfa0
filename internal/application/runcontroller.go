// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
	"github.com/ericfisherdev/artistban/internal/metrics"
)

// ErrMissingCredential is returned when an action needs a captured credential
// and none is held yet.
var ErrMissingCredential = errors.New("no credential captured yet")

// Recapturer re-enables one-shot credential capture on host traffic.
type Recapturer interface {
	Arm()
}

// RunControllerOptions holds optional RunController settings.
type RunControllerOptions struct {
	// Account scopes writes. When empty it is resolved from each captured token.
	Account string
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// RolloverInterval is how often Start checks whether a new day has begun
	// since the last completed pass. Defaults to DefaultRolloverInterval.
	RolloverInterval time.Duration
}

// DefaultRolloverInterval is the day-rollover check period used by Start.
const DefaultRolloverInterval = time.Hour

// ControllerStatus is a point-in-time view of the controller.
type ControllerStatus struct {
	State         model.RunState
	HasCredential bool
	Account       string
	LastReport    *model.RunReport
}

// manualRequest represents a user-triggered single-artist block.
type manualRequest struct {
	ref  model.ArtistRef
	done chan manualResult
}

type manualResult struct {
	outcome model.BlockOutcome
	err     error
}

// RunController owns the credential lifecycle and drives automatic passes and
// manual blocks on a single timeline.
type RunController struct {
	fetcher   driven.ListFetcher
	ledger    *Ledger
	executor  *BlockExecutor
	resolver  driven.AccountResolver
	recapture Recapturer
	account   string
	now       func() time.Time
	rollover  time.Duration

	captureCh chan string
	manualCh  chan manualRequest

	// passMu serializes passes and manual blocks for callers outside Start.
	passMu sync.Mutex

	mu    sync.RWMutex
	cred  *model.Credential
	state model.RunState
	last  *model.RunReport
}

// NewRunController creates a RunController with all required dependencies.
// resolver may be nil when opts.Account is set.
func NewRunController(
	fetcher driven.ListFetcher,
	ledger *Ledger,
	executor *BlockExecutor,
	resolver driven.AccountResolver,
	opts RunControllerOptions,
) *RunController {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rollover := opts.RolloverInterval
	if rollover <= 0 {
		rollover = DefaultRolloverInterval
	}

	return &RunController{
		fetcher:   fetcher,
		ledger:    ledger,
		executor:  executor,
		resolver:  resolver,
		account:   opts.Account,
		now:       now,
		rollover:  rollover,
		captureCh: make(chan string, 1),
		manualCh:  make(chan manualRequest),
		state:     model.RunStateIdle,
	}
}

// SetRecapturer wires the observer that is re-armed whenever the held
// credential is discarded. Call before Start.
func (c *RunController) SetRecapturer(r Recapturer) {
	c.recapture = r
}

// OnOutgoingAuthHeader receives a captured Authorization header from the
// observer. It never blocks: if a capture is already queued the new one is
// dropped.
func (c *RunController) OnOutgoingAuthHeader(header string) {
	metrics.CredentialCaptures.Inc()
	select {
	case c.captureCh <- header:
	default:
		slog.Debug("credential capture dropped, one already pending")
	}
}

// Start runs the controller timeline: each captured credential triggers one
// automatic pass, and manual requests are served in between. Once a new day
// begins, capture is re-armed so the next authenticated host request starts
// that day's pass with a fresh token. Start blocks until the context is
// canceled.
func (c *RunController) Start(ctx context.Context) {
	ticker := time.NewTicker(c.rollover)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("run controller stopped")
			return
		case <-ticker.C:
			c.checkRollover(ctx)
		case header := <-c.captureCh:
			c.handleCapture(ctx, header)
		case req := <-c.manualCh:
			outcome, err := c.manualBlock(ctx, req.ref)
			req.done <- manualResult{outcome: outcome, err: err}
		}
	}
}

// checkRollover re-arms capture when no pass has completed today. A capture
// already queued will start the pass on its own.
func (c *RunController) checkRollover(ctx context.Context) {
	if len(c.captureCh) > 0 {
		return
	}
	lastRun, found, err := c.ledger.LastRunDate(ctx)
	if err != nil {
		slog.Error("day rollover check failed", "error", err)
		return
	}
	if found && sameDay(lastRun, c.now()) {
		return
	}
	slog.Debug("no pass completed today, re-arming credential capture")
	c.rearm()
}

func (c *RunController) handleCapture(ctx context.Context, header string) {
	if err := c.AcceptCredential(ctx, header); err != nil {
		slog.Error("credential not usable", "error", err)
		return
	}
	if _, err := c.RunAutomatic(ctx); err != nil {
		slog.Error("automatic pass not started", "error", err)
	}
}

// AcceptCredential turns a captured Authorization header into the held
// credential. If the account cannot be resolved no credential is held and
// capture is re-armed.
func (c *RunController) AcceptCredential(ctx context.Context, header string) error {
	if header == "" {
		return ErrMissingCredential
	}

	account := c.account
	if account == "" {
		if c.resolver == nil {
			c.rearm()
			return errors.New("no account configured and no resolver available")
		}
		resolved, err := c.resolver.ResolveAccount(ctx, header)
		if err != nil {
			c.rearm()
			return fmt.Errorf("resolve account: %w", err)
		}
		account = resolved
	}

	c.mu.Lock()
	c.cred = &model.Credential{Token: header, Account: account, CapturedAt: c.now()}
	c.mu.Unlock()

	slog.Info("credential captured", "account", account)
	return nil
}

// Credential returns the held credential, if any.
func (c *RunController) Credential() (model.Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil {
		return model.Credential{}, false
	}
	return *c.cred, true
}

// ClearCredential discards the held credential and re-arms capture so the
// next authenticated host request provides a fresh one.
func (c *RunController) ClearCredential() {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
	c.rearm()
}

func (c *RunController) rearm() {
	if c.recapture != nil {
		c.recapture.Arm()
	}
}

// Status returns the current controller state and the last pass report.
func (c *RunController) Status() ControllerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := ControllerStatus{State: c.state, HasCredential: c.cred != nil}
	if c.cred != nil {
		status.Account = c.cred.Account
	}
	if c.last != nil {
		report := *c.last
		status.LastReport = &report
	}
	return status
}

func (c *RunController) setState(s model.RunState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// RunAutomatic performs one gated pass: fetch the list, diff it against the
// ledger and block every remaining artist in file order. The run marker is set
// only when the pass reaches Done, whatever the per-artist outcomes were.
// Returns ErrMissingCredential without starting if no credential is held.
func (c *RunController) RunAutomatic(ctx context.Context) (model.RunReport, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	if _, ok := c.Credential(); !ok {
		return model.RunReport{}, ErrMissingCredential
	}

	report := model.RunReport{
		ID:        uuid.NewString(),
		Mode:      model.RunModeAutomatic,
		StartedAt: c.now(),
	}
	log := slog.With("run_id", report.ID)

	c.setState(model.RunStateGated)
	today := c.now()
	lastRun, found, err := c.ledger.LastRunDate(ctx)
	if err != nil {
		return c.finish(log, report, model.RunStateAborted, err), nil
	}
	if found && sameDay(lastRun, today) {
		log.Info("automatic pass already ran today", "last_run", lastRun.Format(DateLayout))
		return c.finish(log, report, model.RunStateSkipped, nil), nil
	}

	c.setState(model.RunStateFetching)
	records, err := c.fetcher.FetchList(ctx)
	if err != nil {
		return c.finish(log, report, model.RunStateAborted, err), nil
	}
	report.Fetched = len(records)

	c.setState(model.RunStateDiffing)
	seen, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return c.finish(log, report, model.RunStateAborted, err), nil
	}
	pending := Diff(records, seen)
	report.Pending = len(pending)
	log.Info("list loaded", "artists", report.Fetched, "to_block", report.Pending)

	c.setState(model.RunStateProcessing)
	for _, rec := range pending {
		if ctx.Err() != nil {
			return c.finish(log, report, model.RunStateAborted, ctx.Err()), nil
		}
		// The list may repeat an ID; one success covers every later copy.
		if _, done := seen[rec.ExternalID]; done {
			continue
		}

		cred, ok := c.currentCredential(ctx)
		if !ok {
			log.Warn("block skipped, waiting for credential recapture", "artist", rec.DisplayName, "artist_id", rec.ExternalID)
			metrics.BlockTotal.WithLabelValues(string(model.RunModeAutomatic), string(model.BlockOutcomeFailure)).Inc()
			report.Failed++
			continue
		}

		switch c.executor.Execute(ctx, model.RunModeAutomatic, cred, rec.ExternalID) {
		case model.BlockOutcomeSuccess:
			seen[rec.ExternalID] = struct{}{}
			if err := c.ledger.Add(ctx, rec.ExternalID); err != nil {
				log.Error("ledger update failed", "artist_id", rec.ExternalID, "error", err)
			}
			report.Succeeded++
			log.Info("artist blocked",
				"artist", rec.DisplayName,
				"artist_id", rec.ExternalID,
				"progress", fmt.Sprintf("%d/%d", report.Succeeded, report.Pending),
			)
		case model.BlockOutcomeAuthExpired:
			report.AuthExpired++
			c.ClearCredential()
		default:
			report.Failed++
		}
	}

	// A pass stopped during its last write is not complete.
	if ctx.Err() != nil {
		return c.finish(log, report, model.RunStateAborted, ctx.Err()), nil
	}

	if err := c.ledger.SetLastRunDate(ctx, today); err != nil {
		log.Error("run marker update failed", "error", err)
		report.Error = err.Error()
	}
	return c.finish(log, report, model.RunStateDone, nil), nil
}

// currentCredential returns the held credential. When none is held it picks up
// a capture that arrived while the pass was running, without starting a new pass.
func (c *RunController) currentCredential(ctx context.Context) (model.Credential, bool) {
	if cred, ok := c.Credential(); ok {
		return cred, true
	}

	select {
	case header := <-c.captureCh:
		if err := c.AcceptCredential(ctx, header); err != nil {
			slog.Error("recaptured credential not usable", "error", err)
			return model.Credential{}, false
		}
		return c.Credential()
	default:
		return model.Credential{}, false
	}
}

func (c *RunController) finish(log *slog.Logger, report model.RunReport, state model.RunState, err error) model.RunReport {
	report.State = state
	report.FinishedAt = c.now()
	if err != nil {
		report.Error = err.Error()
	}

	c.mu.Lock()
	c.state = state
	c.last = &report
	c.mu.Unlock()

	metrics.RunTotal.WithLabelValues(string(state)).Inc()
	if state != model.RunStateSkipped {
		metrics.RunDuration.Observe(report.Duration().Seconds())
	}

	attrs := []any{
		"state", state,
		"fetched", report.Fetched,
		"pending", report.Pending,
		"succeeded", report.Succeeded,
		"auth_expired", report.AuthExpired,
		"failed", report.Failed,
		"duration", report.Duration().Round(time.Millisecond),
	}
	if err != nil {
		log.Error("automatic pass aborted", append(attrs, "error", err)...)
	} else {
		log.Info("automatic pass complete", attrs...)
	}
	return report
}

// Diff returns the records whose ID is not in seen, in their original order.
func Diff(records []model.ListRecord, seen map[string]struct{}) []model.ListRecord {
	pending := make([]model.ListRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ExternalID]; ok {
			continue
		}
		pending = append(pending, rec)
	}
	return pending
}

// ManualBlock blocks a single artist chosen by the user, bypassing the daily
// gate. It is served on the Start timeline and blocks until done or until the
// context is canceled. On success the ID is added to the ledger; the run
// marker is never touched.
func (c *RunController) ManualBlock(ctx context.Context, ref model.ArtistRef) (model.BlockOutcome, error) {
	done := make(chan manualResult, 1)
	req := manualRequest{ref: ref, done: done}

	select {
	case c.manualCh <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-done:
		return res.outcome, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *RunController) manualBlock(ctx context.Context, ref model.ArtistRef) (model.BlockOutcome, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	id, err := ref.ResolveID()
	if err != nil {
		return "", err
	}

	cred, ok := c.Credential()
	if !ok {
		return "", ErrMissingCredential
	}

	outcome := c.executor.Execute(ctx, model.RunModeManual, cred, id)
	switch outcome {
	case model.BlockOutcomeSuccess:
		if err := c.ledger.Add(ctx, id); err != nil {
			return outcome, fmt.Errorf("artist blocked but ledger update failed: %w", err)
		}
		slog.Info("artist blocked manually", "artist", ref.Name, "artist_id", id, "url", ref.URL)
	case model.BlockOutcomeAuthExpired:
		c.ClearCredential()
	}
	return outcome, nil
}
