package transport

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/rpc"
	"github.com/shiftmaze/shiftmaze/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
	maxMessageSize = 16 * 1024
	sendBufferSize = 64
)

// Client is one websocket connection. Its notifier methods never block: a
// full send buffer drops the message with a warning, so one slow client
// cannot stall a broadcast.
type Client struct {
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

var _ session.ClientNotifier = (*Client)(nil)

func newClient(playerID string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger.With(slog.String("player_id", playerID)),
		done:     make(chan struct{}),
	}
}

// OnJoin implements session.ClientNotifier
func (c *Client) OnJoin(state *model.ClientGameState) {
	c.notify(rpc.NotifyOnJoin, rpc.StateParams{State: state})
}

// OnStateChange implements session.ClientNotifier
func (c *Client) OnStateChange(state *model.ClientGameState) {
	c.notify(rpc.NotifyOnStateChange, rpc.StateParams{State: state})
}

// OnMessage implements session.ClientNotifier
func (c *Client) OnMessage(text string, opts model.MessageOptions) {
	c.notify(rpc.NotifyOnMessage, rpc.MessageParams{Text: text, Options: opts})
}

// OnPushPositionHover implements session.ClientNotifier
func (c *Client) OnPushPositionHover(position *model.Position) {
	c.notify(rpc.NotifyOnPushPositionHover, rpc.PushPositionHoverParams{Position: position})
}

// OnServerReject implements session.ClientNotifier
func (c *Client) OnServerReject(reason string) {
	c.notify(rpc.NotifyOnServerReject, rpc.ServerRejectParams{Reason: reason})
}

// Close implements session.ClientNotifier
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) notify(method string, params interface{}) {
	payload, err := json.Marshal(rpc.Notification{Method: method, Params: params})
	if err != nil {
		c.logger.Error("marshaling notification", slog.String("method", method), slog.String("error", err.Error()))
		return
	}
	c.enqueue(payload)
}

// respond queues an RPC response for the client
func (c *Client) respond(resp rpc.Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("marshaling response", slog.String("error", err.Error()))
		return
	}
	c.enqueue(payload)
}

func (c *Client) enqueue(payload []byte) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.logger.Warn("send buffer full, dropping message")
	}
}

// writePump drains the send channel onto the wire, keeping the connection
// alive with pings. Runs as a goroutine per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			// Flush queued messages so a rejection reason still lands
			// before the close frame
			for {
				select {
				case payload := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

// readPump reads requests off the wire and hands them to handle until the
// connection drops
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", slog.String("error", err.Error()))
			}
			return
		}
		handle(c, payload)
	}
}
