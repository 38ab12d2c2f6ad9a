package poker

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preflopTable deals a fresh three-handed hand: button seat 0, small blind
// seat 1, big blind seat 2, seat 0 first to act facing the 2-cent big blind.
func preflopTable(t *testing.T, stacks map[int]int64) (*TableState, []*Chair, time.Time) {
	t.Helper()
	now := testNow()
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(stacks)
	NormalizeSeats(ts, chairs)
	require.True(t, StartHand(ts, chairs, rand.New(rand.NewSource(42)), now))
	return ts, chairs, now
}

func chairAt(chairs []*Chair, index int) *Chair {
	for _, c := range chairs {
		if c.SeatIndex == index {
			return c
		}
	}
	return nil
}

func TestApplyActionRejectsIllegalActions(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})

	tests := []struct {
		name   string
		player string
		action ActionType
		amount int64
		want   error
	}{
		{"unknown player", "ghost", ActionCheck, 0, ErrNotSeated},
		{"out of turn", "b", ActionCall, 0, ErrNotYourTurn},
		{"check facing a bet", "a", ActionCheck, 0, ErrCheckFacingBet},
		{"bet while facing a bet", "a", ActionBet, 10, ErrBetNotAllowed},
		{"raise below minimum", "a", ActionRaise, 3, ErrRaiseTooSmall},
		{"raise beyond stack", "a", ActionRaise, 500, ErrInsufficientStack},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ApplyAction(ts, chairs, tc.player, tc.action, tc.amount, now)
			require.ErrorIs(t, err, tc.want)
		})
	}

	// Nothing moved.
	assert.Equal(t, int64(3), ts.PotCents)
	assert.Equal(t, 0, ts.TurnIndex)
	assert.Equal(t, int64(100), chairAt(chairs, 0).StackCents)
}

func TestApplyActionRejectsOutsideHand(t *testing.T) {
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100})
	NormalizeSeats(ts, chairs)
	err := ApplyAction(ts, chairs, "a", ActionCheck, 0, testNow())
	require.ErrorIs(t, err, ErrNoHandInProgress)
}

func TestApplyActionCallAndCheckCloseRound(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionCall, 0, now))
	assert.Equal(t, int64(5), ts.PotCents)
	assert.Equal(t, int64(98), chairAt(chairs, 0).StackCents)
	assert.Equal(t, 1, ts.TurnIndex)

	require.NoError(t, ApplyAction(ts, chairs, "b", ActionCall, 0, now))
	assert.Equal(t, int64(6), ts.PotCents, "small blind completes for one more cent")

	// Big blind owes nothing and may check the option.
	err := ApplyAction(ts, chairs, "c", ActionCall, 0, now)
	require.ErrorIs(t, err, ErrNothingToCall)
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionCheck, 0, now))

	assert.True(t, ts.roundCloseable())
}

func TestApplyActionFold(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionFold, 0, now))
	assert.Equal(t, SeatFolded, ts.Seat(0).Status)
	assert.Equal(t, "Fold", ts.Seat(0).LastAction)
	assert.Equal(t, int64(3), ts.PotCents, "folding forfeits nothing beyond prior bets")
	assert.Equal(t, 1, ts.TurnIndex)
}

func TestApplyActionFullRaiseReopensAction(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionRaise, 6, now))

	assert.Equal(t, int64(6), ts.CurrentBetCents)
	assert.Equal(t, int64(4), ts.MinRaiseCents, "minimum raise becomes the last full increment")
	assert.Equal(t, 2, ts.LastAggressor)
	assert.False(t, ts.Seat(0).HasActed, "a full raise reopens action for earlier callers")
	assert.False(t, ts.Seat(1).HasActed)
	assert.False(t, ts.roundCloseable())
	assert.Equal(t, int64(10), ts.PotCents)
}

func TestApplyActionAllInUnderRaiseDoesNotReopen(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 6, 2: 100})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionRaise, 4, now))
	require.True(t, ts.Seat(0).HasActed)
	require.False(t, ts.Seat(2).HasActed)

	// Small blind shoves: total 6 with only 5 behind after the blind, an
	// increment of 2 against a minimum raise of 2... make it a true
	// under-raise by shoving to 6 against a current bet of 4 with a
	// 4-cent minimum: increment 2 < 4.
	ts.MinRaiseCents = 4
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionRaise, 6, now))

	assert.Equal(t, SeatAllIn, ts.Seat(1).Status)
	assert.Equal(t, int64(6), ts.CurrentBetCents)
	assert.Equal(t, int64(4), ts.MinRaiseCents, "under-raise leaves the minimum unchanged")
	assert.Equal(t, 0, ts.LastAggressor, "under-raise is not aggression")
	assert.True(t, ts.Seat(0).HasActed, "action is not reopened for prior actors")
}

func TestApplyActionRaiseMustExceedCurrentBet(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 21})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionRaise, 50, now))
	require.Equal(t, int64(50), ts.CurrentBetCents)
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionFold, 0, now))

	// The big blind has 19 behind; a shove totalling 21 is below the
	// standing bet and is not a raise.
	err := ApplyAction(ts, chairs, "c", ActionRaise, 21, now)
	require.ErrorIs(t, err, ErrRaiseTooSmall)
	assert.Equal(t, int64(50), ts.CurrentBetCents, "a rejected shove never lowers the bet")
	assert.Equal(t, int64(2), ts.Seat(2).BetCents)
	assert.Equal(t, 2, ts.TurnIndex)

	// The short stack gets in by calling all-in for less.
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionCall, 0, now))
	assert.Equal(t, SeatAllIn, ts.Seat(2).Status)
	assert.Equal(t, int64(21), ts.Seat(2).BetCents)
	assert.Equal(t, int64(50), ts.CurrentBetCents)
}

func TestApplyActionShortAllInBetKeepsMinRaise(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})
	require.NoError(t, ApplyAction(ts, chairs, "a", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionCheck, 0, now))
	require.NoError(t, AdvancePhase(ts, now))

	chairAt(chairs, 1).StackCents = 1
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionBet, 1, now))
	assert.Equal(t, SeatAllIn, ts.Seat(1).Status)
	assert.Equal(t, int64(1), ts.CurrentBetCents)
	assert.Equal(t, int64(2), ts.MinRaiseCents, "minimum raise never drops below the big blind")

	// A raise over the short bet still needs a full big-blind increment.
	err := ApplyAction(ts, chairs, "c", ActionRaise, 2, now)
	require.ErrorIs(t, err, ErrRaiseTooSmall)
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionRaise, 3, now))
	assert.Equal(t, int64(3), ts.CurrentBetCents)
	assert.Equal(t, int64(2), ts.MinRaiseCents)
}

func TestApplyActionBet(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})
	require.NoError(t, ApplyAction(ts, chairs, "a", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionCall, 0, now))
	require.NoError(t, ApplyAction(ts, chairs, "c", ActionCheck, 0, now))
	require.NoError(t, AdvancePhase(ts, now))

	err := ApplyAction(ts, chairs, "b", ActionRaise, 4, now)
	require.ErrorIs(t, err, ErrRaiseNotAllowed)

	err = ApplyAction(ts, chairs, "b", ActionBet, 1, now)
	require.ErrorIs(t, err, ErrBetTooSmall)

	require.NoError(t, ApplyAction(ts, chairs, "b", ActionBet, 10, now))
	assert.Equal(t, int64(10), ts.CurrentBetCents)
	assert.Equal(t, int64(10), ts.MinRaiseCents)
	assert.Equal(t, 1, ts.LastAggressor)
	assert.Equal(t, int64(16), ts.PotCents)
}

func TestApplyActionCallShortStackGoesAllIn(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionRaise, 50, now))
	chairAt(chairs, 1).StackCents = 10
	require.NoError(t, ApplyAction(ts, chairs, "b", ActionCall, 0, now))

	assert.Equal(t, SeatAllIn, ts.Seat(1).Status)
	assert.Equal(t, int64(0), chairAt(chairs, 1).StackCents)
	assert.Equal(t, int64(11), ts.Seat(1).BetCents, "calls all-in for less")
}

func TestApplyActionClearsTimeoutCount(t *testing.T) {
	ts, chairs, now := preflopTable(t, map[int]int64{0: 100, 1: 100, 2: 100})
	ts.Seat(0).TimeoutCount = 1

	require.NoError(t, ApplyAction(ts, chairs, "a", ActionCall, 0, now))
	assert.Equal(t, 0, ts.Seat(0).TimeoutCount)
}

func TestParseAction(t *testing.T) {
	for action, name := range actionNames {
		parsed, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
	}
	parsed, err := ParseAction("  Fold ")
	require.NoError(t, err)
	assert.Equal(t, ActionFold, parsed)

	_, err = ParseAction("jam")
	require.Error(t, err)
}
