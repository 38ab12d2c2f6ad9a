package poker

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SeatStatus is the closed set of states a seat can be in during a hand.
type SeatStatus int

const (
	// SeatActive seats can still act in the current betting round.
	SeatActive SeatStatus = iota
	// SeatFolded seats are out of the current hand but keep their chair.
	SeatFolded
	// SeatAllIn seats have committed their whole stack and cannot act, but
	// remain eligible to win the pot.
	SeatAllIn
	// SeatOut seats are seated but ineligible for the current or next hand:
	// stack below one big blind, or joined while a hand was in progress.
	SeatOut
)

var seatStatusNames = map[SeatStatus]string{
	SeatActive: "active",
	SeatFolded: "folded",
	SeatAllIn:  "allin",
	SeatOut:    "out",
}

// String returns the display name of the status
func (s SeatStatus) String() string {
	if name, ok := seatStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON stores statuses by name so persisted table state stays readable
func (s SeatStatus) MarshalJSON() ([]byte, error) {
	name, ok := seatStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid seat status %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON implements json.Unmarshaler for SeatStatus
func (s *SeatStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range seatStatusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("invalid seat status %q", name)
}

// Seat is the in-hand record for one occupied chair. The chip stack itself is
// owned by the chair (the external seat-persistence record), not the seat, so
// stacks survive seat add/remove independent of table-state churn.
type Seat struct {
	SeatIndex    int        `json:"seat_index"`
	PlayerID     string     `json:"player_id"`
	Hand         []Card     `json:"hand,omitempty"`
	BetCents     int64      `json:"bet_cents"`
	Status       SeatStatus `json:"status"`
	HasActed     bool       `json:"has_acted"`
	LastAction   string     `json:"last_action,omitempty"`
	TimeoutCount int        `json:"timeout_count"`
}

// Chair is the authoritative record of one occupied chair: who sits there and
// what their stack is. Chairs are loaded from and written back to the store by
// the caller; the engine mutates StackCents but never creates or destroys a
// chair's chips.
type Chair struct {
	SeatIndex  int
	PlayerID   string
	StackCents int64
}

// chairByIndex builds a lookup of chairs keyed by seat index.
func chairByIndex(chairs []*Chair) map[int]*Chair {
	m := make(map[int]*Chair, len(chairs))
	for _, c := range chairs {
		m[c.SeatIndex] = c
	}
	return m
}

// NormalizeSeats reconciles the table's seat records against the
// authoritative chair list. Seats whose chair is gone (or reoccupied by a
// different player) are dropped; newly occupied chairs get a fresh seat.
// Seats still occupied by the same player keep their in-hand fields
// untouched, so a seat that leaves mid-hand is excluded from further turn
// computation without disturbing pot math already contributed.
//
// Normalization is idempotent and never fabricates or erases chip stacks.
// Returns true if anything changed.
func NormalizeSeats(ts *TableState, chairs []*Chair) bool {
	occupied := chairByIndex(chairs)
	changed := false

	kept := ts.Seats[:0]
	have := make(map[int]bool, len(ts.Seats))
	for _, seat := range ts.Seats {
		chair, ok := occupied[seat.SeatIndex]
		if !ok || chair.PlayerID != seat.PlayerID {
			changed = true
			if ts.TurnIndex == seat.SeatIndex {
				ts.TurnIndex = NoSeat
			}
			continue
		}
		kept = append(kept, seat)
		have[seat.SeatIndex] = true
	}
	ts.Seats = kept

	for _, chair := range chairs {
		if have[chair.SeatIndex] {
			continue
		}
		status := SeatActive
		if ts.Phase != PhaseWaiting {
			// Joined mid-hand: sit out until the next hand starts.
			status = SeatOut
		}
		ts.Seats = append(ts.Seats, &Seat{
			SeatIndex: chair.SeatIndex,
			PlayerID:  chair.PlayerID,
			Status:    status,
		})
		changed = true
	}

	if changed {
		sort.Slice(ts.Seats, func(i, j int) bool {
			return ts.Seats[i].SeatIndex < ts.Seats[j].SeatIndex
		})
	}
	return changed
}
