package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/protocol"
)

// Conn is a duplex client transport. Sends are best-effort: a slow or dead
// socket drops frames rather than blocking a shard tick.
type Conn interface {
	Send(msg protocol.Message)
	Close(code int)
	RemoteAddr() string
}

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 256
)

// wsConn adapts a gorilla websocket to Conn with a buffered write pump.
// The three highest-frequency messages go out as binary frames; the rest
// as JSON text.
type wsConn struct {
	ws  *websocket.Conn
	log *logrus.Entry

	mu     sync.Mutex
	out    chan outFrame
	closed bool
}

type outFrame struct {
	messageType int
	data        []byte
}

func newWSConn(ws *websocket.Conn, log *logrus.Entry) *wsConn {
	c := &wsConn{
		ws:  ws,
		log: log,
		out: make(chan outFrame, sendBufferSize),
	}
	go c.writePump()
	return c
}

func (c *wsConn) writePump() {
	for frame := range c.out {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(frame.messageType, frame.data); err != nil {
			c.log.WithError(err).Debug("write failed")
			return
		}
	}
}

// Send encodes and queues one message. Frames are dropped when the buffer
// is full or the connection is closed.
func (c *wsConn) Send(msg protocol.Message) {
	var frame outFrame
	if data := protocol.EncodeBinaryMessage(msg); data != nil {
		frame = outFrame{messageType: websocket.BinaryMessage, data: data}
	} else {
		data, err := protocol.EncodeMessage(msg)
		if err != nil {
			c.log.WithError(err).Warn("encode failed")
			return
		}
		frame = outFrame{messageType: websocket.TextMessage, data: data}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- frame:
	default:
		c.log.Debug("send buffer full, dropping frame")
	}
}

// Close sends a close frame with the given code and tears the socket down.
func (c *wsConn) Close(code int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""), deadline)
	c.ws.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
