package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cardroomlabs/cardroom/pkg/poker"
	"github.com/cardroomlabs/cardroom/pkg/server/internal/db"
)

// TableRecord aliases the storage layer's table row.
type TableRecord = db.TableRecord

// TableUpdate aliases the storage layer's read-modify-write view.
type TableUpdate = db.TableUpdate

// Database defines the interface for database operations
type Database interface {
	// GetPlayerBalance returns the current balance of a player
	GetPlayerBalance(playerID string) (int64, error)
	// UpdatePlayerBalance updates a player's balance and records the transaction
	UpdatePlayerBalance(playerID string, amount int64, transactionType, description string) error

	// Table persistence
	CreateTable(rec *TableRecord) error
	ListTables() ([]*TableRecord, error)
	ListOccupiedTableIDs() ([]string, error)
	FindPlayerSeat(playerID string) (tableID string, seatIndex int, found bool, err error)

	// UpdateTable runs fn inside a single transaction over one table: state,
	// seats, and any balance movements commit or roll back together.
	UpdateTable(tableID string, fn func(u *TableUpdate) error) error
	// ViewTable runs fn over a consistent read-only snapshot of one table.
	ViewTable(tableID string, fn func(rec *TableRecord, chairs []*poker.Chair) error) error

	// Close closes the database connection
	Close() error
}

// Transaction represents a player's transaction
type Transaction struct {
	ID          int64
	PlayerID    string
	Amount      int64
	Type        string
	Description string
	CreatedAt   string
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string) (Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	return db.NewDB(dbPath)
}
