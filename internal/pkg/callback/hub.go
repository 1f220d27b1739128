package callback

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jad7/imouapi/internal/pkg/logging"
)

const (
	writeTimeout   = time.Second * 10
	clientSendSize = 16
)

// subscriber is one connected WebSocket client.
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan *Event
}

// hub fans received events out to WebSocket subscribers.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	upgrader    websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		subscribers: make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// subscribers are local tooling, not browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams events until
// the peer goes away.
func (h *hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		logging.Logger(r.Context()).WithError(err).Error("upgrading subscriber connection")
		return
	}

	sub := &subscriber{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan *Event, clientSendSize),
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	logging.Logger(r.Context()).WithField("subscriber", sub.id).Info("subscriber connected")

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

// writeLoop pushes events to one subscriber.
func (h *hub) writeLoop(sub *subscriber) {
	for ev := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteJSON(ev); err != nil {
			logging.Logger(nil).WithError(err).WithField("subscriber", sub.id).Debug("dropping subscriber")
			h.drop(sub)
			return
		}
	}

	// hub closed the channel
	_ = sub.conn.Close()
}

// readLoop discards inbound frames and detects disconnects.
func (h *hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

func (h *hub) drop(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.id]; ok {
		delete(h.subscribers, sub.id)
		close(sub.send)
		_ = sub.conn.Close()
	}
}

// broadcast delivers an event to every subscriber, skipping those whose
// send buffer is full.
func (h *hub) broadcast(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.send <- ev:
		default:
			logging.Logger(nil).WithField("subscriber", sub.id).Warn("subscriber too slow, skipping event")
		}
	}
}

// close disconnects all subscribers.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.send)
	}
}

// subscriberCount is used by the status endpoint and tests.
func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
