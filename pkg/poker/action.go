package poker

import (
	"fmt"
	"strings"
	"time"
)

// ActionType is the closed set of player actions.
type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
)

var actionNames = map[ActionType]string{
	ActionFold:  "fold",
	ActionCheck: "check",
	ActionCall:  "call",
	ActionBet:   "bet",
	ActionRaise: "raise",
}

// String returns the display name of the action
func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction maps a wire-format action name to its type.
func ParseAction(name string) (ActionType, error) {
	for action, n := range actionNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return action, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// ApplyAction validates and applies one player action. Illegal actions are
// rejected with a sentinel error before any state changes. Chips move from
// the chair's stack into the pot immediately; per-seat BetCents tracks only
// what this seat has put in during the current round, for call and raise
// accounting.
//
// For bets, amountCents is the bet size. For raises, amountCents is the total
// this round's bet is raised to, not the increment. A full raise reopens the
// action for seats that already acted; an all-in for less than a full raise
// does not.
func ApplyAction(ts *TableState, chairs []*Chair, playerID string, action ActionType, amountCents int64, now time.Time) error {
	seat := ts.SeatOfPlayer(playerID)
	if seat == nil {
		return ErrNotSeated
	}
	if !ts.Phase.isStreet() {
		return ErrNoHandInProgress
	}
	if ts.TurnIndex != seat.SeatIndex || seat.Status != SeatActive {
		return ErrNotYourTurn
	}

	chair := chairByIndex(chairs)[seat.SeatIndex]
	if chair == nil {
		return fmt.Errorf("%w: seat %d has no chair", ErrInconsistentState, seat.SeatIndex)
	}

	pay := func(amount int64) {
		chair.StackCents -= amount
		seat.BetCents += amount
		ts.PotCents += amount
		if chair.StackCents == 0 {
			seat.Status = SeatAllIn
		}
	}
	reopen := func() {
		for _, other := range ts.Seats {
			if other.SeatIndex != seat.SeatIndex && other.Status == SeatActive {
				other.HasActed = false
			}
		}
	}

	switch action {
	case ActionFold:
		seat.Status = SeatFolded
		seat.LastAction = "Fold"

	case ActionCheck:
		if seat.BetCents != ts.CurrentBetCents {
			return ErrCheckFacingBet
		}
		seat.LastAction = "Check"

	case ActionCall:
		owed := ts.CurrentBetCents - seat.BetCents
		if owed <= 0 {
			return ErrNothingToCall
		}
		if owed > chair.StackCents {
			// Calling all-in for less; the seat stays a contender for the
			// whole pot.
			owed = chair.StackCents
		}
		pay(owed)
		seat.LastAction = "Call"

	case ActionBet:
		if ts.CurrentBetCents != 0 {
			return ErrBetNotAllowed
		}
		if amountCents > chair.StackCents {
			return ErrInsufficientStack
		}
		if amountCents < ts.MinRaiseCents && amountCents != chair.StackCents {
			return ErrBetTooSmall
		}
		pay(amountCents)
		ts.CurrentBetCents = amountCents
		// An all-in bet below the minimum never lowers the minimum raise.
		if amountCents > ts.MinRaiseCents {
			ts.MinRaiseCents = amountCents
		}
		ts.LastAggressor = seat.SeatIndex
		reopen()
		seat.LastAction = "Bet"

	case ActionRaise:
		if ts.CurrentBetCents == 0 {
			return ErrRaiseNotAllowed
		}
		// A raise must put the round's bet above the standing one. A short
		// stack that cannot do that calls all-in for less instead.
		if amountCents <= ts.CurrentBetCents {
			return ErrRaiseTooSmall
		}
		increment := amountCents - ts.CurrentBetCents
		add := amountCents - seat.BetCents
		if add > chair.StackCents {
			return ErrInsufficientStack
		}
		if increment < ts.MinRaiseCents && add != chair.StackCents {
			return ErrRaiseTooSmall
		}
		pay(add)
		ts.CurrentBetCents = amountCents
		if increment >= ts.MinRaiseCents {
			ts.MinRaiseCents = increment
			ts.LastAggressor = seat.SeatIndex
			reopen()
		}
		seat.LastAction = "Raise"

	default:
		return fmt.Errorf("unknown action %d", int(action))
	}

	seat.HasActed = true
	// A voluntary action clears the consecutive-timeout strike count.
	seat.TimeoutCount = 0

	ts.AdvanceTurn(now)
	return nil
}
