package model

// BlockOutcome classifies the result of a single block write.
type BlockOutcome string

const (
	BlockOutcomeSuccess     BlockOutcome = "success"
	BlockOutcomeAuthExpired BlockOutcome = "auth_expired"
	BlockOutcomeFailure     BlockOutcome = "failure"
)

// RunState is a state of the run controller's pass state machine.
type RunState string

const (
	RunStateIdle       RunState = "idle"
	RunStateGated      RunState = "gated"
	RunStateSkipped    RunState = "skipped"
	RunStateFetching   RunState = "fetching"
	RunStateAborted    RunState = "aborted"
	RunStateDiffing    RunState = "diffing"
	RunStateProcessing RunState = "processing"
	RunStateDone       RunState = "done"
)

// IsTerminal reports whether the pass has ended in this state.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateSkipped, RunStateAborted, RunStateDone:
		return true
	default:
		return false
	}
}

// RunMode distinguishes the daily automatic pass from user-triggered actions.
type RunMode string

const (
	RunModeAutomatic RunMode = "automatic"
	RunModeManual    RunMode = "manual"
)
