package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes to a gorilla connection. Session notices arrive
// from timer goroutines while the read loop answers requests.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Wrap takes ownership of an upgraded connection.
func Wrap(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteJSON sends an event with its data.
func (c *Conn) WriteJSON(event Event, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(ResponsePayload{Event: event, Data: data})
}

// WriteError sends an error event.
func (c *Conn) WriteError(code, msg string) error {
	return c.WriteJSON(EventError, ErrorData{Code: code, Message: msg})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func (c *Conn) ReadJSON(v any) error {
	c.ws.SetReadDeadline(time.Now().Add(readWait))
	return c.ws.ReadJSON(v)
}

// CloseWith sends a close frame with the given reason and closes the connection.
func (c *Conn) CloseWith(code int, reason string) error {
	c.mu.Lock()
	c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
