package poker

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	now := testNow()
	rng := rand.New(rand.NewSource(42))
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100, 1: 100, 2: 100})
	NormalizeSeats(ts, chairs)

	require.True(t, StartHand(ts, chairs, rng, now))

	assert.Equal(t, PhasePreflop, ts.Phase)
	assert.Equal(t, 0, ts.DealerIndex)
	assert.Equal(t, int64(1), ts.Seat(1).BetCents, "small blind left of the button")
	assert.Equal(t, int64(2), ts.Seat(2).BetCents, "big blind left of the small blind")
	assert.Equal(t, int64(3), ts.PotCents)
	assert.Equal(t, int64(99), chairs[1].StackCents)
	assert.Equal(t, int64(98), chairs[2].StackCents)

	assert.Equal(t, int64(2), ts.CurrentBetCents)
	assert.Equal(t, int64(2), ts.MinRaiseCents)
	assert.Equal(t, 2, ts.LastAggressor)
	assert.Equal(t, 0, ts.TurnIndex, "first to act is left of the big blind")
	assert.Equal(t, now.Add(ActionTimeout), ts.ActionDeadline)

	for _, seat := range ts.Seats {
		assert.Len(t, seat.Hand, 2)
	}
	assert.Len(t, ts.Deck, 46)
	assert.Equal(t, map[int]int64{0: 100, 1: 100, 2: 100}, ts.HandStartStacks,
		"stacks snapshot before blinds")
}

func TestStartHandRotatesButton(t *testing.T) {
	now := testNow()
	rng := rand.New(rand.NewSource(42))
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100, 1: 100, 2: 100})
	NormalizeSeats(ts, chairs)
	ts.DealerIndex = 0

	require.True(t, StartHand(ts, chairs, rng, now))
	assert.Equal(t, 1, ts.DealerIndex)
}

func TestStartHandNeedsTwoFundedSeats(t *testing.T) {
	now := testNow()
	rng := rand.New(rand.NewSource(42))
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100, 1: 1})
	NormalizeSeats(ts, chairs)

	require.False(t, StartHand(ts, chairs, rng, now))
	assert.Equal(t, PhaseWaiting, ts.Phase)
	assert.Equal(t, SeatOut, ts.Seat(1).Status, "stack below the big blind sits out")
}

func TestStartHandShortBigBlindGoesAllIn(t *testing.T) {
	now := testNow()
	rng := rand.New(rand.NewSource(42))
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100, 1: 100, 2: 2})
	NormalizeSeats(ts, chairs)

	require.True(t, StartHand(ts, chairs, rng, now))
	seat := ts.Seat(2)
	assert.Equal(t, SeatAllIn, seat.Status)
	assert.Equal(t, int64(2), seat.BetCents)
	assert.Equal(t, int64(0), chairs[2].StackCents)
	assert.Len(t, seat.Hand, 2, "all-in blind is still dealt in")
}

func TestAdvancePhaseDealsStreets(t *testing.T) {
	now := testNow()
	rng := rand.New(rand.NewSource(42))
	ts := NewTableState(6, 1, 2)
	chairs := testChairs(map[int]int64{0: 100, 1: 100, 2: 100})
	NormalizeSeats(ts, chairs)
	require.True(t, StartHand(ts, chairs, rng, now))

	for _, seat := range ts.Seats {
		seat.BetCents = 2
		seat.HasActed = true
	}

	require.NoError(t, AdvancePhase(ts, now))
	assert.Equal(t, PhaseFlop, ts.Phase)
	assert.Len(t, ts.Community, 3)
	assert.Equal(t, int64(0), ts.CurrentBetCents)
	assert.Equal(t, int64(2), ts.MinRaiseCents)
	assert.Equal(t, NoSeat, ts.LastAggressor)
	assert.Equal(t, 1, ts.TurnIndex, "postflop action starts left of the button")
	for _, seat := range ts.Seats {
		assert.Equal(t, int64(0), seat.BetCents)
		assert.False(t, seat.HasActed)
	}

	require.NoError(t, AdvancePhase(ts, now))
	assert.Equal(t, PhaseTurn, ts.Phase)
	assert.Len(t, ts.Community, 4)

	require.NoError(t, AdvancePhase(ts, now))
	assert.Equal(t, PhaseRiver, ts.Phase)
	assert.Len(t, ts.Community, 5)

	require.NoError(t, AdvancePhase(ts, now))
	assert.Equal(t, PhaseShowdown, ts.Phase)
	assert.Len(t, ts.Community, 5)
	assert.Equal(t, NoSeat, ts.TurnIndex)
}

func TestAdvancePhaseFromWaitingFails(t *testing.T) {
	ts := NewTableState(6, 1, 2)
	err := AdvancePhase(ts, testNow())
	require.ErrorIs(t, err, ErrInconsistentState)
}

func TestResolveShowdownSingleWinner(t *testing.T) {
	now := testNow()
	ts := NewTableState(6, 1, 2)
	ts.Phase = PhaseShowdown
	ts.Community = cards("2c", "7d", "9h", "Jc", "3s")
	ts.PotCents = 10
	ts.DealerIndex = 0
	ts.HandStartStacks = map[int]int64{0: 100, 1: 100, 2: 100}
	ts.Seats = []*Seat{
		{SeatIndex: 0, PlayerID: "a", Status: SeatActive, Hand: cards("As", "Ad")},
		{SeatIndex: 1, PlayerID: "b", Status: SeatActive, Hand: cards("Kh", "Qh")},
		{SeatIndex: 2, PlayerID: "c", Status: SeatFolded, Hand: cards("2h", "3h")},
	}
	chairs := testChairs(map[int]int64{0: 95, 1: 95, 2: 100})

	require.NoError(t, ResolveShowdown(ts, chairs, now))

	assert.Equal(t, int64(105), chairs[0].StackCents)
	assert.Equal(t, int64(95), chairs[1].StackCents)

	summary := ts.LastSummary
	require.NotNil(t, summary)
	assert.Equal(t, now, summary.CompletedAt)
	assert.Equal(t, now.Add(SummaryWindow), summary.ExpiresAt)
	assert.Equal(t, int64(10), summary.PotCents)
	require.Len(t, summary.Results, 3)

	win := summary.Results[0]
	assert.Equal(t, OutcomeWin, win.Outcome)
	assert.Equal(t, int64(10), win.ShareCents)
	assert.Equal(t, int64(5), win.NetCents)
	assert.Len(t, win.Hand, 2, "winning hole cards published in the summary")

	loss := summary.Results[1]
	assert.Equal(t, OutcomeLoss, loss.Outcome)
	assert.Equal(t, int64(0), loss.ShareCents)
	assert.Equal(t, int64(-5), loss.NetCents)

	folded := summary.Results[2]
	assert.Equal(t, OutcomeLoss, folded.Outcome)
	assert.Equal(t, "Folded", folded.HandDesc)

	// Live hand state fully reset.
	assert.Equal(t, PhaseWaiting, ts.Phase)
	assert.Equal(t, int64(0), ts.PotCents)
	assert.Equal(t, NoSeat, ts.TurnIndex)
	assert.Nil(t, ts.Community)
	assert.Nil(t, ts.Deck)
	assert.Nil(t, ts.HandStartStacks)
	assert.Equal(t, summary.ExpiresAt, ts.PendingStartAt)
	for _, seat := range ts.Seats {
		assert.Nil(t, seat.Hand)
		assert.Equal(t, int64(0), seat.BetCents)
		assert.Equal(t, SeatActive, seat.Status)
	}
}

func TestResolveShowdownSplitsOddPotToLowestSeat(t *testing.T) {
	now := testNow()
	ts := NewTableState(6, 1, 2)
	ts.Phase = PhaseShowdown
	// The board plays for everyone, so the pot splits.
	ts.Community = cards("As", "Ks", "Qs", "Js", "10s")
	ts.PotCents = 5
	ts.HandStartStacks = map[int]int64{1: 100, 2: 100}
	ts.Seats = []*Seat{
		{SeatIndex: 1, PlayerID: "b", Status: SeatActive, Hand: cards("2h", "3h")},
		{SeatIndex: 2, PlayerID: "c", Status: SeatActive, Hand: cards("2d", "3d")},
	}
	chairs := testChairs(map[int]int64{1: 98, 2: 97})

	require.NoError(t, ResolveShowdown(ts, chairs, now))

	assert.Equal(t, int64(101), chairs[0].StackCents, "remainder cent goes to the lowest seat")
	assert.Equal(t, int64(99), chairs[1].StackCents)

	require.Len(t, ts.LastSummary.Results, 2)
	assert.Equal(t, OutcomeTie, ts.LastSummary.Results[0].Outcome)
	assert.Equal(t, OutcomeTie, ts.LastSummary.Results[1].Outcome)
	assert.Equal(t, int64(3), ts.LastSummary.Results[0].ShareCents)
	assert.Equal(t, int64(2), ts.LastSummary.Results[1].ShareCents)
}

func TestResolveShowdownNoContenders(t *testing.T) {
	ts := NewTableState(6, 1, 2)
	ts.Phase = PhaseShowdown
	err := ResolveShowdown(ts, nil, testNow())
	require.ErrorIs(t, err, ErrInconsistentState)
}
