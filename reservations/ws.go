package reservations

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"nova/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

func resourceKey(res *models.Reservation) string {
	if res.Type == models.ReservationTypeMachine {
		return "machine_" + res.MachineID
	}
	return "staff_" + res.StaffUserID
}

// HandleWS subscribes a client to live updates for one resource:
// GET /ws/reservations/:resourceType/:resourceId.
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("resourceType") + "_" + ps.ByName("resourceId")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[key] = append(subscribers[key], conn)
	mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[key]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[key] = newList
	mu.Unlock()

	conn.Close()
}

// Broadcast fans an event out to everyone watching a resource. Best effort;
// dead connections get cleaned up on their next read.
func Broadcast(key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("reservations ws: marshal failed:", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	for _, conn := range subscribers[key] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Println("reservations ws: write failed:", err)
		}
	}
}
