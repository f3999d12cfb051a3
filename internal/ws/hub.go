package ws

import (
	"sync"

	"go-inventory-pos/internal/model"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a connected dashboard, tagged with the viewer's role.
type Client struct {
	Conn Conn
	Role model.Role
}

// Message is delivered to every client whose role is in Audience, or to every
// client when Audience is empty.
type Message struct {
	Payload  []byte
	Audience []model.Role
}

func (m Message) reaches(role model.Role) bool {
	if len(m.Audience) == 0 {
		return true
	}
	for _, r := range m.Audience {
		if r == role {
			return true
		}
	}
	return false
}

type Hub struct {
	clients    map[Conn]model.Role
	register   chan Client
	unregister chan Conn
	broadcast  chan Message
	done       chan struct{}
	mutex      sync.Mutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[Conn]model.Role),
		register:   make(chan Client),
		unregister: make(chan Conn),
		broadcast:  make(chan Message, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues msg for delivery. It returns false if the hub has stopped.
func (h *Hub) Broadcast(msg Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	case <-h.done:
		return false
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Stop ends Run and closes every connection.
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c.Conn] = c.Role
			h.mutex.Unlock()
			h.logger.Info("ws client connected", zap.String("role", string(c.Role)))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for conn, role := range h.clients {
				if !msg.reaches(role) {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
					h.logger.Warn("ws write failed, dropping client", zap.Error(err))
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}
