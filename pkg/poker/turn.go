package poker

import "time"

// timedOutLabel is the display label for a forced action.
const timedOutLabel = "Timed out"

// NextSeat returns the lowest seat index greater than fromIndex (wrapping to
// the lowest index overall) whose seat is active, or active/all-in when
// includeAllIn is set. Returns NoSeat if no such seat exists.
//
// Ordinary turn advancement excludes all-in seats (they have nothing left to
// decide); button and blind selection at hand start includes them, since
// all-in seats are still in for dealing purposes.
func (ts *TableState) NextSeat(fromIndex int, includeAllIn bool) int {
	eligible := func(seat *Seat) bool {
		if seat.Status == SeatActive {
			return true
		}
		return includeAllIn && seat.Status == SeatAllIn
	}

	best := NoSeat
	wrap := NoSeat
	for _, seat := range ts.Seats {
		if !eligible(seat) {
			continue
		}
		if seat.SeatIndex > fromIndex && (best == NoSeat || seat.SeatIndex < best) {
			best = seat.SeatIndex
		}
		if wrap == NoSeat || seat.SeatIndex < wrap {
			wrap = seat.SeatIndex
		}
	}
	if best != NoSeat {
		return best
	}
	return wrap
}

// AdvanceTurn moves the turn to the next active seat and resets the action
// deadline. If no active seat exists the turn is cleared; the orchestrator's
// showdown fast-forward handles that case.
func (ts *TableState) AdvanceTurn(now time.Time) {
	next := ts.NextSeat(ts.TurnIndex, false)
	ts.TurnIndex = next
	if next == NoSeat {
		ts.ActionDeadline = time.Time{}
		return
	}
	ts.ActionDeadline = now.Add(ActionTimeout)
}

// ApplyTimeout forces an action for the seat on the clock if its deadline has
// passed: a check when it faces no bet, otherwise a fold. Either way the
// seat's consecutive timeout count is incremented; reaching
// EvictionThreshold queues the seat for eviction by the orchestrator.
// Returns true if a forced action was applied.
func (ts *TableState) ApplyTimeout(now time.Time) bool {
	if !ts.Phase.isStreet() || ts.TurnIndex == NoSeat {
		return false
	}
	if ts.ActionDeadline.IsZero() || now.Before(ts.ActionDeadline) {
		return false
	}

	seat := ts.Seat(ts.TurnIndex)
	if seat == nil || seat.Status != SeatActive {
		// Progress validates the turn pointer before timeouts run.
		return false
	}

	if seat.BetCents == ts.CurrentBetCents {
		seat.HasActed = true
	} else {
		seat.Status = SeatFolded
	}
	seat.LastAction = timedOutLabel
	seat.TimeoutCount++

	ts.AdvanceTurn(now)
	return true
}
