package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	snapshotInterval = time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API carries no cookies, so cross-origin reads leak nothing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleTableSocket streams table snapshots to one viewer over a websocket.
// The viewer identity comes from the player query parameter and controls
// hole-card visibility, exactly as on the GET state route.
func (s *Server) handleTableSocket(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	viewerID := r.URL.Query().Get("player")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debugf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Read pump: discard client frames, notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshots := time.NewTicker(snapshotInterval)
	defer snapshots.Stop()
	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	for {
		select {
		case <-done:
			return
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-snapshots.C:
			snap, err := s.State(tableID, viewerID)
			if err != nil {
				s.log.Debugf("Snapshot failed for table %s: %v", tableID, err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
