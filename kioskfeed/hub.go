package kioskfeed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Hub fans kiosk events (check-ins, check-outs, blocks) out to connected
// dashboard clients.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clients    map[*Client]bool
	stop       chan struct{}
	once       sync.Once
}

type Client struct {
	Send chan []byte
	conn *websocket.Conn
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		clients:    make(map[*Client]bool),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// Slow consumer; drop it.
					delete(h.clients, c)
					close(c.Send)
				}
			}
		case <-h.stop:
			for c := range h.clients {
				close(c.Send)
			}
			h.clients = make(map[*Client]bool)
			return
		}
	}
}

func (h *Hub) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// Notify satisfies the kiosk scan handler's notifier interface.
func (h *Hub) Notify(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("kiosk feed: marshal failed:", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Println("kiosk feed: broadcast buffer full, dropping event")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles GET /api/kiosk/feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{Send: make(chan []byte, 16), conn: conn}
	h.register <- client

	go func() {
		defer func() {
			h.unregister <- client
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		conn.Close()
	}()
}
