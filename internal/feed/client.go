package feed

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Client reads feed messages from a websocket on its own goroutine and queues
// them until the frame goroutine drains them.
type Client struct {
	conn *websocket.Conn
	log  zerolog.Logger

	mu    sync.Mutex
	queue []Message
	err   error

	done chan struct{}
}

// Dial connects to a feed server.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "dial feed %s", url)
	}
	c := &Client{conn: conn, log: log, done: make(chan struct{})}
	go c.read()
	log.Info().Str("url", url).Msg("feed connected")
	return c, nil
}

func (c *Client) read() {
	defer close(c.done)
	for {
		_, bz, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info().Msg("feed closed by server")
				err = nil
			}
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
		m, err := Decode(bz)
		if err != nil {
			c.log.Warn().Err(err).Msg("feed message dropped")
			continue
		}
		c.mu.Lock()
		c.queue = append(c.queue, m)
		c.mu.Unlock()
	}
}

// Drain returns every message received since the previous call, in arrival order.
func (c *Client) Drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.queue
	c.queue = nil
	return msgs
}

// Err reports why the read loop stopped, once it has.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed when the read loop exits.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close sends a close frame and waits briefly for the read loop to exit.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return c.conn.Close()
}
