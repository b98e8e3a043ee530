package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"shipscan/internal/modkit/httpkit"
	"shipscan/internal/platform/logger"
	"shipscan/internal/services/api/scan/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Frame kinds sent over the event stream
const (
	FrameSnapshot = "snapshot"
	FrameEvent    = "event"
)

// Frame is one websocket message
type Frame struct {
	Type     string           `json:"type"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Event    *domain.Event    `json:"event,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
	// stations run on the warehouse LAN behind the CORS middleware
	CheckOrigin: func(*stdhttp.Request) bool { return true },
}

// swagger:route GET /scan/sessions/{id}/events Scan scanEvents
// @Summary Stream session events over a websocket
// @Description The first frame is the session snapshot, then one frame per event
// @Tags Scan
// @Param id path string true "Session id"
// @Success 101 "switching protocols"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /scan/sessions/{id}/events [get]
func (h *handlers) events(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id := httpkit.Param(r, "id")
	snap, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpkit.WriteError(w, r, err)
		return
	}
	ch, cancel, err := h.svc.Subscribe(r.Context(), id)
	if err != nil {
		httpkit.WriteError(w, r, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error
		return
	}
	log := logger.C(logger.WithSession(r.Context(), id))

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, snap, ch, closed, log)
}

// readPump discards client frames and reports when the peer goes away
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, snap domain.Snapshot, ch <-chan domain.Event, closed <-chan struct{}, log *logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Frame{Type: FrameSnapshot, Snapshot: &snap}); err != nil {
		log.Debug().Err(err).Msg("event stream: snapshot write failed")
		return
	}

	for {
		select {
		case ev, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(Frame{Type: FrameEvent, Event: &ev}); err != nil {
				log.Debug().Err(err).Msg("event stream: write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
