package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/c14220110/mediflow-backend/internal/visits/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// Layar antrian hanya membalas pong; pesan besar berarti client salah.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin sudah dibatasi oleh middleware CORS dan token JWT.
		return true
	},
}

// QueueSource menyediakan antrian aktif untuk snapshot awal.
type QueueSource interface {
	Queue() []models.Visit
}

// ServeWS meng-upgrade koneksi layar antrian. Jika queue tidak nil, client
// menerima snapshot antrian sebelum event berikutnya.
func ServeWS(hub *Hub, queue QueueSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		client := &Client{Conn: conn, Send: make(chan []byte, 256)}

		if queue != nil {
			snapshot, err := json.Marshal(models.Snapshot{Type: models.EventSnapshot, Visits: queue.Queue()})
			if err != nil {
				hub.log.Error().Err(err).Msg("encode queue snapshot")
				return conn.Close()
			}
			client.Send <- snapshot
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			return conn.Close()
		}

		go client.writePump()
		go client.readPump(hub)
		return nil
	}
}

// readPump menjaga deadline lewat pong dan mendeteksi koneksi yang tertutup.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump mengirim event dari Send dan ping berkala. Send ditutup oleh hub.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
