package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	readDeadline = 60 * time.Second
	readLimit    = 4 * 1024
)

// Handler upgrades GET /ws/live requests and subscribes the connection to the
// feed until it closes.
func (f *Feed) Handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		c := newClient(conn, f.logger)
		f.add(c)
		go c.writePump(pingInterval)

		conn.SetReadLimit(readLimit)
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readDeadline))
		})

		// Subscribers only listen; the read loop exists to notice disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		f.remove(c)
		c.close()
	}
}
