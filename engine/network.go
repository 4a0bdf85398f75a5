package engine

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readLimit = 4096
	readWait  = 60 * time.Second
	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ---------------------------------------------------------------------------
// gorilla/websocket transport
// ---------------------------------------------------------------------------

// wsConn adapts a websocket to Conn. gorilla allows one concurrent reader
// and one concurrent writer, which is exactly the inbound/outbound split.
type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	return &wsConn{conn: conn}
}

// ReadFrame returns the next text or binary message.
func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// WriteFrame sends frame as a binary message; clients decode it as JSON.
func (c *wsConn) WriteFrame(frame []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *wsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.conn.Close() })
	return err
}

// ---------------------------------------------------------------------------
// WebSocket handler
// ---------------------------------------------------------------------------

// HandleWS upgrades the request and serves the connection until it ends.
func HandleWS(rt *Router, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error from %s: %v", r.RemoteAddr, err)
		return
	}

	err = rt.Serve(r.Context(), newWSConn(conn))
	switch {
	case err == nil, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
	case errors.Is(err, ErrUnknownGame), errors.Is(err, ErrUnknownToken), errors.Is(err, ErrNotAuthenticate):
		log.Printf("[WS] %s rejected: %v", r.RemoteAddr, err)
	default:
		log.Printf("[WS] %s disconnected: %v", r.RemoteAddr, err)
	}
}
