package poker

import "errors"

// Expected, caller-visible errors. Illegal actions and capacity problems are
// rejected synchronously without mutating any state.
var (
	// Illegal player actions.
	ErrNotSeated         = errors.New("player is not seated at this table")
	ErrNoHandInProgress  = errors.New("no betting round in progress")
	ErrNotYourTurn       = errors.New("not your turn to act")
	ErrCheckFacingBet    = errors.New("cannot check while facing a bet")
	ErrNothingToCall     = errors.New("nothing to call")
	ErrBetNotAllowed     = errors.New("cannot bet while facing a bet, raise instead")
	ErrRaiseNotAllowed   = errors.New("cannot raise with no bet to raise, bet instead")
	ErrBetTooSmall       = errors.New("bet is below the minimum")
	ErrRaiseTooSmall     = errors.New("raise is below the minimum raise")
	ErrInsufficientStack = errors.New("bet exceeds remaining stack")

	// Capacity problems at join time.
	ErrTableFull     = errors.New("table is full")
	ErrSeatTaken     = errors.New("seat is already taken")
	ErrAlreadySeated = errors.New("player is already seated")
)

// ErrInconsistentState marks a state the engine cannot reconcile, such as a
// turn pointer referencing a non-active seat. It indicates a logic or
// concurrency defect; callers must abort the enclosing transaction so the
// corruption is never persisted.
var ErrInconsistentState = errors.New("inconsistent table state")
