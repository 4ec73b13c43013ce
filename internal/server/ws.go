package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/rechenwerk/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Expressions are short.
	maxMessageSize = 1024
)

// wsRequest is one expression submitted over the WebSocket.
type wsRequest struct {
	Expression string `json:"expression"`
}

// wsReply is the answer to one request. Error is set when evaluation failed.
type wsReply struct {
	Expression string  `json:"expression"`
	Value      float64 `json:"value"`
	Display    string  `json:"display"`
	Error      string  `json:"error,omitempty"`
}

// session is one WebSocket connection evaluating expressions
type session struct {
	srv  *Server
	conn *websocket.Conn
	send chan wsReply
}

// handleWebSocket upgrades the connection and starts the session pumps
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for local clients
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade WebSocket: %v", err)
		return
	}

	sess := &session{
		srv:  s,
		conn: conn,
		send: make(chan wsReply, 256),
	}

	go sess.writePump()
	go sess.readPump()
}

// readPump reads expressions from the connection, evaluates them and queues
// the replies
func (c *session) readPump() {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error: %v", err)
			}
			break
		}

		var req wsRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.send <- wsReply{Error: "invalid message"}
			continue
		}

		res, err := c.srv.evaluate(req.Expression)
		if err != nil {
			c.send <- wsReply{Expression: res.Expression, Error: err.Error()}
			continue
		}

		c.send <- wsReply{Expression: res.Expression, Value: res.Value, Display: res.Display}
	}
}

// writePump writes queued replies to the connection and keeps it alive with
// pings
func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case reply, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Reader closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(reply)
			if err != nil {
				logger.Error("Failed to marshal reply: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Error("Failed to write reply: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
