package poker

import (
	"fmt"
	"math/rand"
	"time"
)

// maxProgressSteps bounds the orchestrator's fixpoint loop. A healthy table
// converges in a handful of steps; hitting the bound means a transition is
// not making progress and the state must not be persisted.
const maxProgressSteps = 32

// Eviction records a seat removed for repeated timeouts. The refund is the
// seat's remaining stack; the caller posts it back to the player's balance in
// the same transaction that persists the state.
type Eviction struct {
	SeatIndex   int
	PlayerID    string
	RefundCents int64
}

// ProgressResult reports what a Progress call did.
type ProgressResult struct {
	// Progressed is true if any state changed.
	Progressed bool
	// Evictions lists seats removed this call, with their refunds.
	Evictions []Eviction
}

// Progress drives the table through every transition that is due at the given
// time: expired action deadlines, timeout evictions, betting rounds that can
// close, showdowns with no more betting possible, summary expiry, and
// scheduled hand starts. It is the single progression entry point, called
// after every player action and by the periodic sweep, and it loops until the
// state is quiescent.
//
// Progress mutates ts and the chairs' stacks in place. Callers run it inside
// a read-modify-write transaction over the table; an error means the state
// could not be reconciled and the transaction must be rolled back.
func Progress(ts *TableState, chairs []*Chair, rng *rand.Rand, now time.Time) (ProgressResult, error) {
	var res ProgressResult

	for step := 0; ; step++ {
		if step >= maxProgressSteps {
			return res, fmt.Errorf("%w: progression did not converge", ErrInconsistentState)
		}

		if NormalizeSeats(ts, chairs) {
			res.Progressed = true
		}

		if ts.TurnIndex != NoSeat {
			seat := ts.Seat(ts.TurnIndex)
			if seat == nil || seat.Status != SeatActive {
				return res, fmt.Errorf("%w: turn on seat %d which cannot act", ErrInconsistentState, ts.TurnIndex)
			}
		}

		if ts.ApplyTimeout(now) {
			res.Progressed = true
			continue
		}

		if evicted, err := evictTimedOut(ts, &chairs, &res); err != nil {
			return res, err
		} else if evicted {
			continue
		}

		if ts.Phase != PhaseWaiting {
			// A hand ends early when at most one contender remains, or when no
			// seat can act (everyone all-in): run out the board and resolve.
			if ts.Phase == PhaseShowdown || len(ts.Contenders()) <= 1 || ts.countActive() <= 1 && ts.roundCloseable() {
				if err := ts.dealRemainingCommunity(); err != nil {
					return res, err
				}
				if err := ResolveShowdown(ts, chairs, now); err != nil {
					return res, err
				}
				res.Progressed = true
				continue
			}

			if ts.roundCloseable() {
				if err := AdvancePhase(ts, now); err != nil {
					return res, err
				}
				res.Progressed = true
				continue
			}

			if ts.TurnIndex == NoSeat {
				// The acting seat left mid-hand; hand the turn to the next
				// active seat after the button.
				ts.TurnIndex = ts.NextSeat(ts.DealerIndex, false)
				if ts.TurnIndex != NoSeat {
					ts.ActionDeadline = now.Add(ActionTimeout)
					res.Progressed = true
					continue
				}
			}

			return res, nil
		}

		// Waiting phase: expire a stale summary, then schedule or start the
		// next hand once enough funded seats are present.
		if ts.LastSummary != nil && !now.Before(ts.LastSummary.ExpiresAt) {
			ts.LastSummary = nil
			res.Progressed = true
		}

		eligible := 0
		byIndex := chairByIndex(chairs)
		for _, seat := range ts.Seats {
			chair := byIndex[seat.SeatIndex]
			if chair != nil && chair.StackCents >= ts.BigBlindCents {
				eligible++
			}
		}

		if eligible < 2 {
			if !ts.PendingStartAt.IsZero() {
				ts.PendingStartAt = time.Time{}
				res.Progressed = true
			}
			return res, nil
		}

		if ts.PendingStartAt.IsZero() {
			ts.PendingStartAt = now.Add(StartDelay)
			res.Progressed = true
			return res, nil
		}
		if now.Before(ts.PendingStartAt) {
			return res, nil
		}

		if StartHand(ts, chairs, rng, now) {
			res.Progressed = true
			continue
		}
		return res, nil
	}
}

// evictTimedOut removes every seat that has reached the consecutive-timeout
// threshold, refunding its remaining stack. The chair list is trimmed in
// place so the rest of the progression sees the seat as gone.
func evictTimedOut(ts *TableState, chairs *[]*Chair, res *ProgressResult) (bool, error) {
	byIndex := chairByIndex(*chairs)
	evicted := false

	for _, seat := range ts.Seats {
		if seat.TimeoutCount < EvictionThreshold {
			continue
		}
		chair := byIndex[seat.SeatIndex]
		if chair == nil {
			return false, fmt.Errorf("%w: evicting seat %d with no chair", ErrInconsistentState, seat.SeatIndex)
		}
		res.Evictions = append(res.Evictions, Eviction{
			SeatIndex:   seat.SeatIndex,
			PlayerID:    seat.PlayerID,
			RefundCents: chair.StackCents,
		})
		chair.StackCents = 0
		evicted = true
	}
	if !evicted {
		return false, nil
	}

	kept := (*chairs)[:0]
	removed := make(map[int]bool)
	for _, e := range res.Evictions {
		removed[e.SeatIndex] = true
	}
	for _, chair := range *chairs {
		if removed[chair.SeatIndex] {
			continue
		}
		kept = append(kept, chair)
	}
	*chairs = kept

	NormalizeSeats(ts, *chairs)
	res.Progressed = true
	return true, nil
}
