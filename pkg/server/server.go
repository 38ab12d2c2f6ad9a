package server

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/bisonbotkit/logging"

	"github.com/cardroomlabs/cardroom/pkg/poker"
)

// Server coordinates tables, seats, and player balances. All table mutations
// go through the database's per-table read-modify-write transaction, so the
// server itself holds no table state and no locks; concurrent handlers and
// the sweep serialize on the transaction.
type Server struct {
	log        slog.Logger
	logBackend *logging.LogBackend
	db         Database

	// now and newRng are injectable for deterministic tests.
	now    func() time.Time
	newRng func() *rand.Rand
}

// NewServer creates a new poker server
func NewServer(db Database, logBackend *logging.LogBackend) *Server {
	return &Server{
		log:        logBackend.Logger("SERVER"),
		logBackend: logBackend,
		db:         db,
		now:        time.Now,
		newRng: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// EnsureTierTables creates one table per default buy-in tier if it does not
// exist yet. Called on startup; existing tables (and their states) survive
// restarts untouched.
func (s *Server) EnsureTierTables() error {
	existing, err := s.db.ListTables()
	if err != nil {
		return fmt.Errorf("failed to list tables: %v", err)
	}
	have := make(map[int64]bool, len(existing))
	for _, rec := range existing {
		have[rec.BuyInCents] = true
	}

	for _, buyIn := range DefaultBuyInsCents {
		if have[buyIn] {
			continue
		}
		sb, bb := BlindsForBuyIn(buyIn)
		rec := &TableRecord{
			ID:              uuid.NewString(),
			BuyInCents:      buyIn,
			SmallBlindCents: sb,
			BigBlindCents:   bb,
			MaxSeats:        DefaultMaxSeats,
			State:           poker.NewTableState(DefaultMaxSeats, sb, bb),
		}
		if err := s.db.CreateTable(rec); err != nil {
			return fmt.Errorf("failed to create tier table: %v", err)
		}
		s.log.Infof("Created tier table %s: buy-in %d, blinds %d/%d", rec.ID, buyIn, sb, bb)
	}
	return nil
}

// TableInfo is one table's lobby listing.
type TableInfo struct {
	ID              string `json:"id"`
	BuyInCents      int64  `json:"buy_in_cents"`
	SmallBlindCents int64  `json:"small_blind_cents"`
	BigBlindCents   int64  `json:"big_blind_cents"`
	MaxSeats        int    `json:"max_seats"`
	SeatedCount     int    `json:"seated_count"`
	Phase           string `json:"phase"`
}

// Tables lists every table for the lobby.
func (s *Server) Tables() ([]TableInfo, error) {
	recs, err := s.db.ListTables()
	if err != nil {
		return nil, err
	}
	out := make([]TableInfo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, TableInfo{
			ID:              rec.ID,
			BuyInCents:      rec.BuyInCents,
			SmallBlindCents: rec.SmallBlindCents,
			BigBlindCents:   rec.BigBlindCents,
			MaxSeats:        rec.MaxSeats,
			SeatedCount:     len(rec.State.Seats),
			Phase:           rec.State.Phase.String(),
		})
	}
	return out, nil
}

// progress runs the engine over the update's state and applies any evictions
// it produced: evicted seats lose their chair and get their remaining stack
// refunded to their balance, all within the enclosing transaction.
func (s *Server) progress(u *TableUpdate, now time.Time) error {
	res, err := poker.Progress(u.State, u.Chairs, s.newRng(), now)
	if err != nil {
		return err
	}
	if res.Progressed {
		u.Changed = true
	}
	for _, ev := range res.Evictions {
		u.RemoveSeat(ev.SeatIndex)
		if err := u.Post(ev.PlayerID, ev.RefundCents, "timeout-refund",
			fmt.Sprintf("evicted from table %s", u.Record.ID)); err != nil {
			return err
		}
		s.log.Infof("Evicted player %s from table %s seat %d, refunded %d",
			ev.PlayerID, u.Record.ID, ev.SeatIndex, ev.RefundCents)
	}
	return nil
}

// JoinTable seats a player at the table's fixed buy-in, debiting their
// balance. A player can hold at most one seat across all tables.
func (s *Server) JoinTable(tableID, playerID string, seatIndex int) error {
	_, _, seated, err := s.db.FindPlayerSeat(playerID)
	if err != nil {
		return err
	}
	if seated {
		return poker.ErrAlreadySeated
	}

	return s.db.UpdateTable(tableID, func(u *TableUpdate) error {
		if seatIndex < 0 || seatIndex >= u.Record.MaxSeats {
			return fmt.Errorf("seat index %d out of range", seatIndex)
		}
		if len(u.Chairs) >= u.Record.MaxSeats {
			return poker.ErrTableFull
		}
		for _, c := range u.Chairs {
			if c.SeatIndex == seatIndex {
				return poker.ErrSeatTaken
			}
			if c.PlayerID == playerID {
				return poker.ErrAlreadySeated
			}
		}

		balance, err := u.Balance(playerID)
		if err != nil {
			return err
		}
		if balance < u.Record.BuyInCents {
			return fmt.Errorf("insufficient balance: have %d, buy-in is %d",
				balance, u.Record.BuyInCents)
		}
		if err := u.Post(playerID, -u.Record.BuyInCents, "buy-in",
			fmt.Sprintf("buy-in at table %s", tableID)); err != nil {
			return err
		}
		u.SeatPlayer(seatIndex, playerID, u.Record.BuyInCents)

		s.log.Infof("Player %s joined table %s at seat %d", playerID, tableID, seatIndex)
		return s.progress(u, s.now())
	})
}

// LeaveTable removes a player's seat and credits their remaining stack back
// to their balance. Leaving mid-hand folds the seat implicitly; chips already
// in the pot stay there.
func (s *Server) LeaveTable(tableID, playerID string) error {
	return s.db.UpdateTable(tableID, func(u *TableUpdate) error {
		var chair *poker.Chair
		for _, c := range u.Chairs {
			if c.PlayerID == playerID {
				chair = c
				break
			}
		}
		if chair == nil {
			return poker.ErrNotSeated
		}

		if chair.StackCents > 0 {
			if err := u.Post(playerID, chair.StackCents, "cash-out",
				fmt.Sprintf("left table %s", tableID)); err != nil {
				return err
			}
		}
		u.RemoveSeat(chair.SeatIndex)

		s.log.Infof("Player %s left table %s with %d", playerID, tableID, chair.StackCents)
		return s.progress(u, s.now())
	})
}

// Act applies one player action. Due timeouts are processed first, so a
// late-arriving action from a seat that already timed out fails the turn
// check rather than acting twice.
func (s *Server) Act(tableID, playerID string, action poker.ActionType, amountCents int64) error {
	return s.db.UpdateTable(tableID, func(u *TableUpdate) error {
		now := s.now()
		if err := s.progress(u, now); err != nil {
			return err
		}
		if err := poker.ApplyAction(u.State, u.Chairs, playerID, action, amountCents, now); err != nil {
			return err
		}
		u.Changed = true
		s.log.Debugf("Player %s: %s %d at table %s", playerID, action, amountCents, tableID)
		return s.progress(u, now)
	})
}

// State renders the table for one viewer. Reads never mutate: pending
// deadlines are applied by actions and the sweep, not by observers.
func (s *Server) State(tableID, viewerID string) (poker.TableSnapshot, error) {
	var snap poker.TableSnapshot
	err := s.db.ViewTable(tableID, func(rec *TableRecord, chairs []*poker.Chair) error {
		snap = poker.BuildSnapshot(rec.State, chairs, viewerID, s.now())
		return nil
	})
	return snap, err
}

// SweepTable progresses one table past any due deadlines. A no-op sweep
// leaves the row untouched.
func (s *Server) SweepTable(tableID string) error {
	return s.db.UpdateTable(tableID, func(u *TableUpdate) error {
		return s.progress(u, s.now())
	})
}

// Balance returns a player's balance in cents.
func (s *Server) Balance(playerID string) (int64, error) {
	return s.db.GetPlayerBalance(playerID)
}

// Deposit credits a player's balance.
func (s *Server) Deposit(playerID string, amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("deposit must be positive")
	}
	return s.db.UpdatePlayerBalance(playerID, amountCents, "deposit", "deposit")
}
