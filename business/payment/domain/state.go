package domain

// State is a step of the per-action state machine.
type State string

const (
	StateIdle              State = "idle"
	StateCheckingAllowance State = "checking_allowance"
	StateApproving         State = "approving"
	StateExecuting         State = "executing"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
)

// IsTerminal reports whether no further transition can follow.
func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// Transition is emitted on every state change.
type Transition struct {
	Action ActionKind
	Token  string // token in play during allowance states
	From   State
	To     State
	Err    error
}
