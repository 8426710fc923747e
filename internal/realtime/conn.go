package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection timing.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// DefaultSendBuffer is the number of frames a connection buffers before
// new sends are dropped.
const DefaultSendBuffer = 16

// Conn is a websocket Channel. Writes happen on a dedicated goroutine fed by
// a bounded buffer so that Send never blocks the publisher.
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

var _ Channel = (*Conn)(nil)

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn, bufferSize int, log *slog.Logger) *Conn {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
		logger: log,
	}
}

// Send implements Channel.
func (c *Conn) Send(event string, payload any) bool {
	frame, err := EncodeMessage(event, payload)
	if err != nil {
		c.logger.Error("failed to encode realtime event",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close implements Channel.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Run pumps frames in both directions until the peer goes away or Close is
// called. Each inbound message is passed to handle on the calling goroutine.
func (c *Conn) Run(handle func(Message)) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump(handle)
	c.Close()
	wg.Wait()
}

func (c *Conn) readPump(handle func(Message)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
			c.Send(EventError, ErrorPayload{Message: "malformed message"})
			continue
		}
		handle(msg)

		select {
		case <-c.done:
			return
		default:
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			err := c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("websocket close failed", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// flush writes whatever is still buffered when the connection is closing.
func (c *Conn) flush() {
	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
