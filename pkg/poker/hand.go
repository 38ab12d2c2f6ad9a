package poker

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// refreshEligibility recomputes which seats may play the next hand: a seat is
// active when its chair's stack covers the big blind, otherwise it sits out.
// Folded and all-in statuses from a finished hand are cleared here.
func (ts *TableState) refreshEligibility(chairs []*Chair) {
	stacks := chairByIndex(chairs)
	for _, seat := range ts.Seats {
		chair := stacks[seat.SeatIndex]
		if chair != nil && chair.StackCents >= ts.BigBlindCents {
			seat.Status = SeatActive
		} else {
			seat.Status = SeatOut
		}
	}
}

// postBlind commits min(stack, blind) for the given seat. A seat whose stack
// cannot cover its blind goes all-in for its whole stack.
func (ts *TableState) postBlind(seat *Seat, chair *Chair, blind int64, label string) {
	amount := blind
	if amount > chair.StackCents {
		amount = chair.StackCents
	}
	chair.StackCents -= amount
	seat.BetCents = amount
	ts.PotCents += amount
	seat.LastAction = label
	if chair.StackCents == 0 {
		seat.Status = SeatAllIn
	}
}

// StartHand begins a new hand: rotates the button, posts blinds, shuffles and
// deals, and opens the preflop betting round. It requires at least two
// eligible seats (seated, not out, stack covering the big blind); with fewer,
// the table stays in the waiting phase with under-funded seats marked out,
// and false is returned.
func StartHand(ts *TableState, chairs []*Chair, rng *rand.Rand, now time.Time) bool {
	ts.refreshEligibility(chairs)

	eligible := 0
	for _, seat := range ts.Seats {
		if seat.Status == SeatActive {
			eligible++
		}
	}
	if eligible < 2 {
		ts.Phase = PhaseWaiting
		ts.PendingStartAt = time.Time{}
		return false
	}

	stacks := chairByIndex(chairs)

	// Snapshot stacks before blinds so the summary's net change includes
	// blind losses.
	ts.HandStartStacks = make(map[int]int64, len(ts.Seats))
	for _, seat := range ts.Seats {
		if seat.Status != SeatActive {
			continue
		}
		seat.Hand = nil
		seat.BetCents = 0
		seat.HasActed = false
		seat.LastAction = ""
		ts.HandStartStacks[seat.SeatIndex] = stacks[seat.SeatIndex].StackCents
	}

	ts.DealerIndex = ts.NextSeat(ts.DealerIndex, true)
	smallBlindIndex := ts.NextSeat(ts.DealerIndex, true)
	bigBlindIndex := ts.NextSeat(smallBlindIndex, true)

	ts.postBlind(ts.Seat(smallBlindIndex), stacks[smallBlindIndex], ts.SmallBlindCents, "Small blind")
	ts.postBlind(ts.Seat(bigBlindIndex), stacks[bigBlindIndex], ts.BigBlindCents, "Big blind")

	// Fresh shuffled deck, two hole cards to every seat in the hand. The
	// short-blind all-in edge case keeps such seats in the deal.
	ts.Deck = NewDeck(rng).Cards()
	ts.Community = nil
	for range 2 {
		for _, seat := range ts.Seats {
			if seat.Status != SeatActive && seat.Status != SeatAllIn {
				continue
			}
			card := ts.Deck[0]
			ts.Deck = ts.Deck[1:]
			seat.Hand = append(seat.Hand, card)
		}
	}

	ts.Phase = PhasePreflop
	ts.CurrentBetCents = ts.BigBlindCents
	ts.MinRaiseCents = ts.BigBlindCents
	ts.LastAggressor = bigBlindIndex
	ts.TurnIndex = ts.NextSeat(bigBlindIndex, false)
	ts.ActionDeadline = now.Add(ActionTimeout)
	ts.PendingStartAt = time.Time{}
	ts.LastSummary = nil
	return true
}

// AdvancePhase closes the current betting round and opens the next street:
// preflop to flop deals three community cards, flop to turn and turn to river
// deal one each, river to showdown deals none. Bets are already accumulated
// in the pot, so per-seat round bets simply reset.
func AdvancePhase(ts *TableState, now time.Time) error {
	var next Phase
	var deal int
	switch ts.Phase {
	case PhasePreflop:
		next, deal = PhaseFlop, 3
	case PhaseFlop:
		next, deal = PhaseTurn, 1
	case PhaseTurn:
		next, deal = PhaseRiver, 1
	case PhaseRiver:
		next, deal = PhaseShowdown, 0
	default:
		return fmt.Errorf("%w: cannot advance from phase %v", ErrInconsistentState, ts.Phase)
	}

	for range deal {
		card, err := ts.draw()
		if err != nil {
			return err
		}
		ts.Community = append(ts.Community, card)
	}

	for _, seat := range ts.Seats {
		seat.BetCents = 0
		seat.HasActed = false
	}
	ts.CurrentBetCents = 0
	ts.MinRaiseCents = ts.BigBlindCents
	ts.LastAggressor = NoSeat
	ts.Phase = next

	if next == PhaseShowdown {
		ts.TurnIndex = NoSeat
		ts.ActionDeadline = time.Time{}
		return nil
	}

	ts.TurnIndex = ts.NextSeat(ts.DealerIndex, false)
	if ts.TurnIndex != NoSeat {
		ts.ActionDeadline = now.Add(ActionTimeout)
	} else {
		ts.ActionDeadline = time.Time{}
	}
	return nil
}

// dealRemainingCommunity fills the board to five cards. Used when the engine
// jumps straight to showdown because no further betting is possible.
func (ts *TableState) dealRemainingCommunity() error {
	for len(ts.Community) < 5 {
		card, err := ts.draw()
		if err != nil {
			return err
		}
		ts.Community = append(ts.Community, card)
	}
	return nil
}

// ResolveShowdown scores every contender's best hand, pays the pot, and
// resets the table to the waiting phase with a round summary published for
// the display window.
//
// The whole pot goes to the best hand among all contenders regardless of
// differing all-in stack depths; see the package documentation for this known
// limitation. On a tie the pot splits by integer floor, with any remainder
// cents going to the tied winner with the lowest seat index so the
// distributed total equals the pot exactly.
func ResolveShowdown(ts *TableState, chairs []*Chair, now time.Time) error {
	contenders := ts.Contenders()
	if len(contenders) == 0 {
		return fmt.Errorf("%w: showdown with no contenders", ErrInconsistentState)
	}

	stacks := chairByIndex(chairs)

	type scored struct {
		seat  *Seat
		value HandValue
	}
	ranked := make([]scored, 0, len(contenders))
	for _, seat := range contenders {
		value, err := EvaluateBest(append(cloneCards(seat.Hand), ts.Community...))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInconsistentState, err)
		}
		ranked = append(ranked, scored{seat: seat, value: value})
	}

	best := ranked[0].value
	for _, s := range ranked[1:] {
		if CompareHands(s.value, best) > 0 {
			best = s.value
		}
	}

	var winners []scored
	for _, s := range ranked {
		if CompareHands(s.value, best) == 0 {
			winners = append(winners, s)
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		return winners[i].seat.SeatIndex < winners[j].seat.SeatIndex
	})

	pot := ts.PotCents
	share := pot / int64(len(winners))
	remainder := pot % int64(len(winners))

	shares := make(map[int]int64, len(winners))
	for i, w := range winners {
		amount := share
		if i == 0 {
			amount += remainder
		}
		shares[w.seat.SeatIndex] = amount
		stacks[w.seat.SeatIndex].StackCents += amount
	}

	results := make([]SeatResult, 0, len(ts.Seats))
	for _, s := range ranked {
		outcome := OutcomeLoss
		if _, won := shares[s.seat.SeatIndex]; won {
			if len(winners) > 1 {
				outcome = OutcomeTie
			} else {
				outcome = OutcomeWin
			}
		}
		results = append(results, SeatResult{
			SeatIndex:  s.seat.SeatIndex,
			PlayerID:   s.seat.PlayerID,
			Outcome:    outcome,
			Hand:       cloneCards(s.seat.Hand),
			HandDesc:   s.value.Desc,
			ShareCents: shares[s.seat.SeatIndex],
			NetCents:   ts.netChange(stacks, s.seat.SeatIndex),
		})
	}
	for _, seat := range ts.Seats {
		if seat.Status != SeatFolded {
			continue
		}
		// Folded seats keep their cards for display but take no pot share.
		results = append(results, SeatResult{
			SeatIndex: seat.SeatIndex,
			PlayerID:  seat.PlayerID,
			Outcome:   OutcomeLoss,
			Hand:      cloneCards(seat.Hand),
			HandDesc:  "Folded",
			NetCents:  ts.netChange(stacks, seat.SeatIndex),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SeatIndex < results[j].SeatIndex
	})

	summary := &RoundSummary{
		CompletedAt: now,
		ExpiresAt:   now.Add(SummaryWindow),
		PotCents:    pot,
		Community:   cloneCards(ts.Community),
		Results:     results,
	}

	// Reset for the next hand. The dealer index survives so the button keeps
	// rotating.
	for _, seat := range ts.Seats {
		seat.Hand = nil
		seat.BetCents = 0
		seat.HasActed = false
		seat.LastAction = ""
	}
	ts.refreshEligibility(chairs)
	ts.Phase = PhaseWaiting
	ts.Deck = nil
	ts.Community = nil
	ts.PotCents = 0
	ts.CurrentBetCents = 0
	ts.MinRaiseCents = 0
	ts.TurnIndex = NoSeat
	ts.LastAggressor = NoSeat
	ts.ActionDeadline = time.Time{}
	ts.HandStartStacks = nil
	ts.LastSummary = summary
	ts.PendingStartAt = summary.ExpiresAt
	return nil
}

// netChange is end stack minus the hand-start snapshot for one seat.
func (ts *TableState) netChange(stacks map[int]*Chair, seatIndex int) int64 {
	chair := stacks[seatIndex]
	if chair == nil {
		return 0
	}
	start, ok := ts.HandStartStacks[seatIndex]
	if !ok {
		return 0
	}
	return chair.StackCents - start
}
