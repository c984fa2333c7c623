package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/transport"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// client is one websocket connection with its transport-assigned identity
type client struct {
	gateway *Gateway
	conn    *websocket.Conn
	id      model.ParticipantID
	send    chan []byte
	logger  *slog.Logger
}

// readPump reads envelopes off the connection and dispatches them to the
// handler. It runs on the connection's goroutine and returns when the
// connection drops.
func (c *client) readPump() {
	defer func() {
		c.gateway.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var env transport.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("dropping malformed envelope", slog.String("error", err.Error()))
			continue
		}

		c.gateway.dispatch(c.id, env)
	}
}

// writePump forwards queued messages to the connection and keeps it alive
// with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Gateway closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
