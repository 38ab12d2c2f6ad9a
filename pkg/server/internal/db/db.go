package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cardroomlabs/cardroom/pkg/poker"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection. The DSN requests immediate
// transactions so every read-modify-write over a table takes the write lock
// up front instead of failing on upgrade.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)`,
		`CREATE TABLE IF NOT EXISTS poker_tables (
			id TEXT PRIMARY KEY,
			buy_in INTEGER NOT NULL,
			small_blind INTEGER NOT NULL,
			big_blind INTEGER NOT NULL,
			max_seats INTEGER NOT NULL,
			state TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS poker_seats (
			table_id TEXT NOT NULL,
			seat_index INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			stack INTEGER NOT NULL,
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (table_id, seat_index),
			FOREIGN KEY (table_id) REFERENCES poker_tables(id)
		)`,
		// One seat per player across all tables.
		`CREATE UNIQUE INDEX IF NOT EXISTS poker_seats_player
			ON poker_seats(player_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// TableRecord is one poker table row. State carries the full engine state as
// JSON; seats live in their own rows so balance invariants can be enforced
// relationally.
type TableRecord struct {
	ID              string
	BuyInCents      int64
	SmallBlindCents int64
	BigBlindCents   int64
	MaxSeats        int
	State           *poker.TableState
}

// GetPlayerBalance returns the current balance of a player
func (db *DB) GetPlayerBalance(playerID string) (int64, error) {
	var balance int64
	err := db.QueryRow("SELECT balance FROM players WHERE id = ?", playerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("player not found")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get player balance: %v", err)
	}
	return balance, nil
}

// UpdatePlayerBalance updates a player's balance and records the transaction
func (db *DB) UpdatePlayerBalance(playerID string, amount int64, transactionType, description string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := postBalance(tx, playerID, amount, transactionType, description); err != nil {
		return err
	}
	return tx.Commit()
}

// postBalance applies a balance change and records it, within the given
// transaction.
func postBalance(tx *sql.Tx, playerID string, amount int64, transactionType, description string) error {
	_, err := tx.Exec(`
		INSERT INTO players (id, name, balance)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = balance + ?
	`, playerID, playerID, amount, amount)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (player_id, amount, type, description)
		VALUES (?, ?, ?, ?)
	`, playerID, amount, transactionType, description)
	return err
}

// CreateTable inserts a new table row.
func (db *DB) CreateTable(rec *TableRecord) error {
	state, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("failed to marshal table state: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO poker_tables (id, buy_in, small_blind, big_blind, max_seats, state)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.BuyInCents, rec.SmallBlindCents, rec.BigBlindCents, rec.MaxSeats, string(state))
	return err
}

// ListTables returns every table row, without seat data.
func (db *DB) ListTables() ([]*TableRecord, error) {
	rows, err := db.Query(`
		SELECT id, buy_in, small_blind, big_blind, max_seats, state
		FROM poker_tables ORDER BY buy_in, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TableRecord
	for rows.Next() {
		rec, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListOccupiedTableIDs returns the IDs of tables with at least one seat.
// These are the tables the periodic sweep needs to progress.
func (db *DB) ListOccupiedTableIDs() ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT table_id FROM poker_seats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FindPlayerSeat reports where a player is seated, if anywhere.
func (db *DB) FindPlayerSeat(playerID string) (tableID string, seatIndex int, found bool, err error) {
	err = db.QueryRow(`
		SELECT table_id, seat_index FROM poker_seats WHERE player_id = ?
	`, playerID).Scan(&tableID, &seatIndex)
	if err == sql.ErrNoRows {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, err
	}
	return tableID, seatIndex, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTable(row rowScanner) (*TableRecord, error) {
	var rec TableRecord
	var state string
	if err := row.Scan(&rec.ID, &rec.BuyInCents, &rec.SmallBlindCents,
		&rec.BigBlindCents, &rec.MaxSeats, &state); err != nil {
		return nil, err
	}
	rec.State = &poker.TableState{}
	if err := json.Unmarshal([]byte(state), rec.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state for table %s: %v", rec.ID, err)
	}
	return &rec, nil
}

func loadChairs(tx *sql.Tx, tableID string) ([]*poker.Chair, error) {
	rows, err := tx.Query(`
		SELECT seat_index, player_id, stack FROM poker_seats
		WHERE table_id = ? ORDER BY seat_index
	`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*poker.Chair
	for rows.Next() {
		var c poker.Chair
		if err := rows.Scan(&c.SeatIndex, &c.PlayerID, &c.StackCents); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// TableUpdate is the mutable view of one table inside a read-modify-write
// transaction. Handlers mutate State and Chairs (directly or through the
// engine), move money with Post, and set Changed; UpdateTable persists
// everything atomically on commit.
type TableUpdate struct {
	Record  *TableRecord
	State   *poker.TableState
	Chairs  []*poker.Chair
	Changed bool

	tx *sql.Tx
}

// SeatPlayer adds a chair.
func (u *TableUpdate) SeatPlayer(seatIndex int, playerID string, stackCents int64) {
	u.Chairs = append(u.Chairs, &poker.Chair{
		SeatIndex:  seatIndex,
		PlayerID:   playerID,
		StackCents: stackCents,
	})
	u.Changed = true
}

// RemoveSeat drops the chair at the given index, if present.
func (u *TableUpdate) RemoveSeat(seatIndex int) {
	kept := u.Chairs[:0]
	for _, c := range u.Chairs {
		if c.SeatIndex == seatIndex {
			u.Changed = true
			continue
		}
		kept = append(kept, c)
	}
	u.Chairs = kept
}

// Post moves money on a player's balance within this transaction.
func (u *TableUpdate) Post(playerID string, amount int64, transactionType, description string) error {
	u.Changed = true
	return postBalance(u.tx, playerID, amount, transactionType, description)
}

// Balance reads a player's balance within this transaction.
func (u *TableUpdate) Balance(playerID string) (int64, error) {
	var balance int64
	err := u.tx.QueryRow("SELECT balance FROM players WHERE id = ?", playerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

// UpdateTable runs fn over the table inside a single immediate transaction.
// If fn returns an error, or leaves Changed unset, the transaction rolls back
// and nothing is written.
func (db *DB) UpdateTable(tableID string, fn func(u *TableUpdate) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec, err := scanTable(tx.QueryRow(`
		SELECT id, buy_in, small_blind, big_blind, max_seats, state
		FROM poker_tables WHERE id = ?
	`, tableID))
	if err == sql.ErrNoRows {
		return fmt.Errorf("table %s not found", tableID)
	}
	if err != nil {
		return err
	}

	chairs, err := loadChairs(tx, tableID)
	if err != nil {
		return err
	}

	update := &TableUpdate{Record: rec, State: rec.State, Chairs: chairs, tx: tx}
	if err := fn(update); err != nil {
		return err
	}
	if !update.Changed {
		return nil
	}

	state, err := json.Marshal(update.State)
	if err != nil {
		return fmt.Errorf("failed to marshal table state: %v", err)
	}
	if _, err := tx.Exec(`UPDATE poker_tables SET state = ? WHERE id = ?`,
		string(state), tableID); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM poker_seats WHERE table_id = ?`, tableID); err != nil {
		return err
	}
	for _, c := range update.Chairs {
		if _, err := tx.Exec(`
			INSERT INTO poker_seats (table_id, seat_index, player_id, stack)
			VALUES (?, ?, ?, ?)
		`, tableID, c.SeatIndex, c.PlayerID, c.StackCents); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ViewTable runs fn over a read-only view of the table. The transaction
// guarantees the state and chairs are from the same snapshot.
func (db *DB) ViewTable(tableID string, fn func(rec *TableRecord, chairs []*poker.Chair) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec, err := scanTable(tx.QueryRow(`
		SELECT id, buy_in, small_blind, big_blind, max_seats, state
		FROM poker_tables WHERE id = ?
	`, tableID))
	if err == sql.ErrNoRows {
		return fmt.Errorf("table %s not found", tableID)
	}
	if err != nil {
		return err
	}
	chairs, err := loadChairs(tx, tableID)
	if err != nil {
		return err
	}
	return fn(rec, chairs)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
