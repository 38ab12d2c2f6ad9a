package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cardroomlabs/cardroom/pkg/poker"
)

// Handler returns the HTTP API for the server: lobby listing, per-table
// state, seat management, actions, and balances. The websocket gateway is
// mounted alongside the JSON routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tables", s.handleListTables)
	mux.HandleFunc("GET /api/tables/{id}/state", s.handleTableState)
	mux.HandleFunc("POST /api/tables/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /api/tables/{id}/leave", s.handleLeave)
	mux.HandleFunc("POST /api/tables/{id}/action", s.handleAction)
	mux.HandleFunc("GET /api/players/{id}/balance", s.handleBalance)
	mux.HandleFunc("POST /api/players/{id}/deposit", s.handleDeposit)
	mux.HandleFunc("GET /ws/tables/{id}", s.handleTableSocket)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP statuses: illegal actions and
// capacity problems are client errors, unknown tables are 404, anything else
// is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, poker.ErrNotSeated),
		errors.Is(err, poker.ErrNoHandInProgress),
		errors.Is(err, poker.ErrNotYourTurn),
		errors.Is(err, poker.ErrCheckFacingBet),
		errors.Is(err, poker.ErrNothingToCall),
		errors.Is(err, poker.ErrBetNotAllowed),
		errors.Is(err, poker.ErrRaiseNotAllowed),
		errors.Is(err, poker.ErrBetTooSmall),
		errors.Is(err, poker.ErrRaiseTooSmall),
		errors.Is(err, poker.ErrInsufficientStack):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, poker.ErrTableFull),
		errors.Is(err, poker.ErrSeatTaken),
		errors.Is(err, poker.ErrAlreadySeated):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case strings.Contains(err.Error(), "not found"):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case strings.Contains(err.Error(), "insufficient balance"),
		strings.Contains(err.Error(), "out of range"),
		strings.Contains(err.Error(), "must be positive"):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.Tables()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTableState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.State(r.PathValue("id"), r.URL.Query().Get("player"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type joinRequest struct {
	PlayerID  string `json:"player_id"`
	SeatIndex int    `json:"seat_index"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.JoinTable(r.PathValue("id"), req.PlayerID, req.SeatIndex); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seated"})
}

type leaveRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.LeaveTable(r.PathValue("id"), req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

type actionRequest struct {
	PlayerID    string `json:"player_id"`
	Action      string `json:"action"`
	AmountCents int64  `json:"amount_cents"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	action, err := poker.ParseAction(req.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.Act(r.PathValue("id"), req.PlayerID, action, req.AmountCents); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.Balance(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance_cents": balance})
}

type depositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.Deposit(r.PathValue("id"), req.AmountCents); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "credited"})
}
