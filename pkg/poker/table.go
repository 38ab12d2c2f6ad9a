package poker

import (
	"encoding/json"
	"fmt"
	"time"
)

// NoSeat is the sentinel seat index meaning "no one": no seat holds the turn,
// or no aggressor has been recorded this round.
const NoSeat = -1

// Timing rules. All waiting is expressed as deadlines compared against an
// injected wall-clock time, never as blocking waits.
const (
	// ActionTimeout is how long the seat on the clock has to act before a
	// check or fold is forced.
	ActionTimeout = 30 * time.Second
	// SummaryWindow is how long the last round summary stays visible after a
	// showdown before the next hand may start.
	SummaryWindow = 8 * time.Second
	// StartDelay is the pause before dealing once a waiting table has enough
	// eligible seats.
	StartDelay = 5 * time.Second
	// EvictionThreshold is the number of consecutive forced timeouts after
	// which a seat is removed and its stack refunded.
	EvictionThreshold = 2
)

// Phase is the closed set of table phases.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

var phaseNames = map[Phase]string{
	PhaseWaiting:  "waiting",
	PhasePreflop:  "preflop",
	PhaseFlop:     "flop",
	PhaseTurn:     "turn",
	PhaseRiver:    "river",
	PhaseShowdown: "showdown",
}

// String returns the display name of the phase
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON stores phases by name so persisted table state stays readable
func (p Phase) MarshalJSON() ([]byte, error) {
	name, ok := phaseNames[p]
	if !ok {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return json.Marshal(name)
}

// UnmarshalJSON implements json.Unmarshaler for Phase
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for phase, n := range phaseNames {
		if n == name {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("invalid phase %q", name)
}

// isStreet reports whether the phase is one of the four betting rounds.
func (p Phase) isStreet() bool {
	return p == PhasePreflop || p == PhaseFlop || p == PhaseTurn || p == PhaseRiver
}

// Outcome classifies one seat's result in a finished hand.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeTie  Outcome = "tie"
	OutcomeLoss Outcome = "loss"
)

// SeatResult is one seat's line in a round summary.
type SeatResult struct {
	SeatIndex  int     `json:"seat_index"`
	PlayerID   string  `json:"player_id"`
	Outcome    Outcome `json:"outcome"`
	Hand       []Card  `json:"hand,omitempty"`
	HandDesc   string  `json:"hand_desc,omitempty"`
	ShareCents int64   `json:"share_cents"`
	NetCents   int64   `json:"net_cents"`
}

// RoundSummary is the snapshot retained for a fixed display window after a
// showdown, so clients can show who won after the live hand state is reset.
type RoundSummary struct {
	CompletedAt time.Time    `json:"completed_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
	PotCents    int64        `json:"pot_cents"`
	Community   []Card       `json:"community"`
	Results     []SeatResult `json:"results"`
}

// TableState is the full serializable state of one poker table. It is a plain
// value: all transitions are pure functions of (state, chairs, now), so the
// same state can be driven by a player-action handler and by the periodic
// sweep without the engine itself holding any locks.
type TableState struct {
	Phase    Phase `json:"phase"`
	MaxSeats int   `json:"max_seats"`

	SmallBlindCents int64 `json:"small_blind_cents"`
	BigBlindCents   int64 `json:"big_blind_cents"`

	DealerIndex   int `json:"dealer_index"`
	TurnIndex     int `json:"turn_index"`
	LastAggressor int `json:"last_aggressor"`

	ActionDeadline time.Time `json:"action_deadline,omitzero"`
	PendingStartAt time.Time `json:"pending_start_at,omitzero"`

	Deck      []Card `json:"deck,omitempty"`
	Community []Card `json:"community,omitempty"`

	PotCents        int64 `json:"pot_cents"`
	CurrentBetCents int64 `json:"current_bet_cents"`
	MinRaiseCents   int64 `json:"min_raise_cents"`

	Seats []*Seat `json:"seats"`

	// HandStartStacks snapshots each seat's stack at hand start, only to
	// compute per-seat net change for the summary.
	HandStartStacks map[int]int64 `json:"hand_start_stacks,omitempty"`

	LastSummary *RoundSummary `json:"last_summary,omitempty"`
}

// NewTableState creates the waiting-phase state for an empty table.
func NewTableState(maxSeats int, smallBlindCents, bigBlindCents int64) *TableState {
	return &TableState{
		Phase:           PhaseWaiting,
		MaxSeats:        maxSeats,
		SmallBlindCents: smallBlindCents,
		BigBlindCents:   bigBlindCents,
		DealerIndex:     NoSeat,
		TurnIndex:       NoSeat,
		LastAggressor:   NoSeat,
	}
}

// Seat returns the seat at the given index, or nil.
func (ts *TableState) Seat(index int) *Seat {
	for _, seat := range ts.Seats {
		if seat.SeatIndex == index {
			return seat
		}
	}
	return nil
}

// SeatOfPlayer returns the seat held by the given player, or nil.
func (ts *TableState) SeatOfPlayer(playerID string) *Seat {
	for _, seat := range ts.Seats {
		if seat.PlayerID == playerID {
			return seat
		}
	}
	return nil
}

// Contenders returns the seats still eligible to win the pot: active or
// all-in, not folded, not sitting out.
func (ts *TableState) Contenders() []*Seat {
	var out []*Seat
	for _, seat := range ts.Seats {
		if seat.Status == SeatActive || seat.Status == SeatAllIn {
			out = append(out, seat)
		}
	}
	return out
}

// countActive returns how many seats can still act this round.
func (ts *TableState) countActive() int {
	n := 0
	for _, seat := range ts.Seats {
		if seat.Status == SeatActive {
			n++
		}
	}
	return n
}

// roundCloseable reports whether the current betting round can close: every
// active seat has acted since the last raise and has matched the current bet.
// All-in seats are exempt from matching.
func (ts *TableState) roundCloseable() bool {
	if !ts.Phase.isStreet() {
		return false
	}
	for _, seat := range ts.Seats {
		if seat.Status != SeatActive {
			continue
		}
		if !seat.HasActed || seat.BetCents != ts.CurrentBetCents {
			return false
		}
	}
	return true
}

// draw takes the next card off the persisted deck.
func (ts *TableState) draw() (Card, error) {
	if len(ts.Deck) == 0 {
		return Card{}, fmt.Errorf("%w: deck exhausted mid-hand", ErrInconsistentState)
	}
	card := ts.Deck[0]
	ts.Deck = ts.Deck[1:]
	return card, nil
}
