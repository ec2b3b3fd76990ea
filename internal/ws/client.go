package ws

import (
	"time"

	"codeleague/internal/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
	}
}

// Run registers the client, greets it and blocks until the connection closes.
func (c *Client) Run() {
	c.Hub.Register(c)
	go c.writePump()

	c.reply(Message{Type: MsgReady})
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			c.reply(map[string]string{"type": MsgError, "error": "invalid message"})
			continue
		}
		switch msg.Type {
		case MsgPing:
			c.reply(Message{Type: MsgPong})
		default:
			c.reply(map[string]string{"type": MsgError, "error": "unknown message type"})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues a direct message to this client only. It gives up if the buffer is full.
func (c *Client) reply(v interface{}) {
	msg, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	defer func() {
		// Send may already be closed by Unregister.
		_ = recover()
	}()
	select {
	case c.Send <- msg:
	case <-time.After(500 * time.Millisecond):
		logger.Warn("ws reply dropped", "user_id", c.UserID)
	}
}
