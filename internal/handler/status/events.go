package status

import (
	"net/http"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/gorilla/websocket"
)

const (
	eventBuffer  = 64
	writeTimeout = 5 * time.Second
)

// upgrader keeps gorilla's default origin check: only same-host pages may
// open the stream.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamEvents upgrades to a WebSocket and forwards engine events as JSON
// until the peer goes away. ?kinds=online,offline narrows the stream. Events
// are dropped for a peer that does not keep up.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		http.Error(w, "event stream is not configured", http.StatusNotImplemented)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Err(err).Str("func", "*Handler.streamEvents").Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	queue := make(chan events.Event, eventBuffer)
	unsubscribe := h.events.Subscribe(func(e events.Event) {
		select {
		case queue <- e:
		default:
		}
	}, kindsFromQuery(r.URL.Query().Get("kinds"))...)
	defer unsubscribe()

	// the read loop only detects the peer closing the socket
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case e := <-queue:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				h.logger.Debug().Err(err).Str("func", "*Handler.streamEvents").Msg("event stream closed")
				return
			}
		}
	}
}

func kindsFromQuery(raw string) []events.Kind {
	if raw == "" {
		return nil
	}

	var kinds []events.Kind
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			kinds = append(kinds, events.Kind(part))
		}
	}
	return kinds
}
