package poker

import "time"

// SeatSnapshot is one seat as shown to a viewer. Hole cards are included only
// when the viewer is entitled to see them.
type SeatSnapshot struct {
	SeatIndex    int        `json:"seat_index"`
	PlayerID     string     `json:"player_id"`
	StackCents   int64      `json:"stack_cents"`
	BetCents     int64      `json:"bet_cents"`
	Status       SeatStatus `json:"status"`
	LastAction   string     `json:"last_action,omitempty"`
	IsTurn       bool       `json:"is_turn"`
	Hand         []Card     `json:"hand,omitempty"`
	TimeoutCount int        `json:"timeout_count,omitempty"`
}

// TableSnapshot is the read-only view of a table for one viewer. The deck and
// other players' live hole cards never appear in a snapshot.
type TableSnapshot struct {
	Phase           Phase          `json:"phase"`
	MaxSeats        int            `json:"max_seats"`
	SmallBlindCents int64          `json:"small_blind_cents"`
	BigBlindCents   int64          `json:"big_blind_cents"`
	DealerIndex     int            `json:"dealer_index"`
	TurnIndex       int            `json:"turn_index"`
	ActionDeadline  time.Time      `json:"action_deadline,omitzero"`
	PendingStartAt  time.Time      `json:"pending_start_at,omitzero"`
	Community       []Card         `json:"community,omitempty"`
	PotCents        int64          `json:"pot_cents"`
	CurrentBetCents int64          `json:"current_bet_cents"`
	MinRaiseCents   int64          `json:"min_raise_cents"`
	Seats           []SeatSnapshot `json:"seats"`
	LastSummary     *RoundSummary  `json:"last_summary,omitempty"`
}

// BuildSnapshot renders the table for one viewer. A seat's hole cards are
// visible to the player holding the seat, and to everyone during the showdown
// and while the last round summary is still within its display window.
func BuildSnapshot(ts *TableState, chairs []*Chair, viewerID string, now time.Time) TableSnapshot {
	stacks := chairByIndex(chairs)
	revealAll := ts.Phase == PhaseShowdown ||
		(ts.LastSummary != nil && now.Before(ts.LastSummary.ExpiresAt))

	snap := TableSnapshot{
		Phase:           ts.Phase,
		MaxSeats:        ts.MaxSeats,
		SmallBlindCents: ts.SmallBlindCents,
		BigBlindCents:   ts.BigBlindCents,
		DealerIndex:     ts.DealerIndex,
		TurnIndex:       ts.TurnIndex,
		ActionDeadline:  ts.ActionDeadline,
		PendingStartAt:  ts.PendingStartAt,
		Community:       cloneCards(ts.Community),
		PotCents:        ts.PotCents,
		CurrentBetCents: ts.CurrentBetCents,
		MinRaiseCents:   ts.MinRaiseCents,
		Seats:           make([]SeatSnapshot, 0, len(ts.Seats)),
	}
	if ts.LastSummary != nil && now.Before(ts.LastSummary.ExpiresAt) {
		snap.LastSummary = ts.LastSummary
	}

	for _, seat := range ts.Seats {
		ss := SeatSnapshot{
			SeatIndex:    seat.SeatIndex,
			PlayerID:     seat.PlayerID,
			BetCents:     seat.BetCents,
			Status:       seat.Status,
			LastAction:   seat.LastAction,
			IsTurn:       seat.SeatIndex == ts.TurnIndex,
			TimeoutCount: seat.TimeoutCount,
		}
		if chair := stacks[seat.SeatIndex]; chair != nil {
			ss.StackCents = chair.StackCents
		}
		if seat.PlayerID == viewerID || revealAll {
			ss.Hand = cloneCards(seat.Hand)
		}
		snap.Seats = append(snap.Seats, ss)
	}
	return snap
}
