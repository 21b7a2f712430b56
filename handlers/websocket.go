package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"votapp-backend/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS enforcement happens at the router; the upgrade request
		// already passed the origin allowlist.
		return true
	},
}

// Hub fans live result updates out to WebSocket subscribers, grouped by the
// voting they watch.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// resultsMessage is the frame pushed to subscribers after each cast.
type resultsMessage struct {
	Type     string      `json:"type"`
	VotingID string      `json:"voting_id"`
	Results  interface{} `json:"results"`
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*wsClient]bool)}
}

// Broadcast sends the current results to every subscriber of a voting.
// Slow clients are dropped rather than allowed to block the rest.
func (h *Hub) Broadcast(votingID string, results interface{}) {
	payload, err := json.Marshal(resultsMessage{
		Type:     "results_update",
		VotingID: votingID,
		Results:  results,
	})
	if err != nil {
		log.Printf("failed to marshal broadcast for voting %s: %v", votingID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[votingID] {
		select {
		case client.send <- payload:
		default:
			close(client.send)
			delete(h.clients[votingID], client)
		}
	}
}

func (h *Hub) register(votingID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[votingID] == nil {
		h.clients[votingID] = make(map[*wsClient]bool)
	}
	h.clients[votingID][client] = true
}

func (h *Hub) unregister(votingID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[votingID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, votingID)
		}
	}
}

// HandleWebSocket upgrades GET /api/votings/:id/ws and streams result
// updates for that voting. The initial frame carries the current results so
// subscribers never start blind.
func (h *Hub) HandleWebSocket(votes *service.VoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		votingID := c.Param("id")

		results, err := votes.GetResults(c.Request.Context(), votingID)
		if err != nil {
			respondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		// The snapshot is queued before the client is registered: once
		// Broadcast can see the client it may also close its channel, so
		// nothing else is allowed to send on it.
		client := &wsClient{conn: conn, send: make(chan []byte, 16)}
		initial, _ := json.Marshal(resultsMessage{
			Type:     "results_snapshot",
			VotingID: votingID,
			Results:  results,
		})
		client.send <- initial
		h.register(votingID, client)

		go client.writeLoop()
		go func() {
			client.readLoop()
			h.unregister(votingID, client)
		}()
	}
}

func (cl *wsClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case message, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains inbound frames so pings are answered and disconnects are
// noticed; subscribers are not expected to send anything meaningful.
func (cl *wsClient) readLoop() {
	defer cl.conn.Close()
	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
