package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer adalah jumlah pesan yang boleh antri per client sebelum
	// client dianggap macet dan diputus.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	role   string
	userID string
	send   chan []byte
}

// Hub menampung semua koneksi websocket dan menyiarkan event lifecycle.
// Admin menerima semua event, customer dan teknisi hanya event request
// yang melibatkan mereka. Setiap client punya writer sendiri sehingga
// broadcast tidak pernah menunggu socket.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// RegisterClient -> menambahkan connection dengan role dan user id
func (h *Hub) RegisterClient(conn *websocket.Conn, role, userID string) {
	go h.writePump(h.register(conn, role, userID))
}

func (h *Hub) register(conn *websocket.Conn, role, userID string) *client {
	c := &client{conn: conn, role: role, userID: userID, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = c
	return c
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop harus dipanggil dengan mutex terkunci.
func (h *Hub) drop(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending to %s client: %v", c.role, err)
			h.UnregisterClient(c.conn)
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify implements services.Notifier.
func (h *Hub) Notify(_ context.Context, ev services.Event) {
	h.broadcast(Message{Event: ev.Type, Data: ev}, func(c *client) bool {
		switch c.role {
		case models.RoleAdmin:
			return true
		case models.RoleCustomer:
			return c.userID == ev.CustomerID
		case models.RoleTechnician:
			return ev.TechnicianID != "" && c.userID == ev.TechnicianID
		}
		return false
	})
}

// BroadcastMessage -> broadcast pesan umum ke semua client
func (h *Hub) BroadcastMessage(msg Message) {
	h.broadcast(msg, func(*client) bool { return true })
}

func (h *Hub) broadcast(msg Message, match func(*client) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	queued := 0
	for conn, c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- data:
			queued++
		default:
			utils.ErrorLogger.Printf("Dropping stalled %s client %s", c.role, c.userID)
			h.drop(conn)
		}
	}
	utils.InfoLogger.Debugf("Broadcast %s to %d clients", msg.Event, queued)
}
