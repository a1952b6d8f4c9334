package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/easeaico/project-pet/internal/companion"
	"github.com/easeaico/project-pet/internal/visual"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StreamMessage is pushed to the client after every committed change.
type StreamMessage struct {
	Type  string             `json:"type"`
	State companion.Snapshot `json:"state"`
	Scene visual.Scene       `json:"scene"`
}

func newStreamMessage(snap companion.Snapshot) StreamMessage {
	return StreamMessage{Type: "state", State: snap, Scene: visual.Compose(snap.Pet)}
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user id")
		return
	}
	c, release, err := h.companions.Acquire(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load companion", "user_id", userID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load pet")
		return
	}
	defer release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err.Error())
		return
	}
	defer conn.Close()

	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go readPump(conn, closed)

	if err := writeMessage(conn, newStreamMessage(c.State())); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "pet unloaded"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeMessage(conn, newStreamMessage(snap)); err != nil {
				slog.Debug("stream write failed", "user_id", userID, "error", err.Error())
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// signals closed when the peer goes away.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
