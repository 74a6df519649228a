package ws

// Hub bertanggung jawab untuk:
// menyimpan koneksi client layar antrian,
// menerima event dari ledger kunjungan,
// dan melakukan broadcast event ke seluruh client yang terhubung.

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/c14220110/mediflow-backend/internal/visits/models"
)

// Client mewakili koneksi WebSocket
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub mengelola semua koneksi client
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run memproses register/unregister/broadcast sampai ctx selesai, lalu menutup
// semua koneksi.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("queue client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug().Int("clients", len(h.clients)).Msg("queue client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish mengirim event ke semua client. Event dibuang jika buffer broadcast penuh.
func (h *Hub) Publish(event models.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Type).Msg("encode queue event")
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Str("event", event.Type).Str("visit_id", event.Visit.VisitID).Msg("queue feed is full, dropping event")
	}
}
