// Package mqttws implements a single-threaded, non-blocking MQTT-over-WebSocket
// client engine: one TLS socket, one self-pipe, one poll set, driven forward
// by repeated calls to a service routine rather than by a goroutine per
// connection.
package mqttws

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/golang-io/mqttws/internal/mqttpkt"
	"github.com/golang-io/mqttws/internal/wsframe"
)

// Client is the engine's aggregate root: exactly one socket, one TLS
// session, one WebSocket framer, one MQTT session, one wake-up pipe, and
// the flags the service routine consults each pass. None of its fields are
// safe for concurrent use except through the methods documented as
// thread-safe (Publish, Subscribe, wakeupPipe.Wake); the service routine
// itself must only ever run on one goroutine at a time, and Disconnect
// runs service passes itself, so it belongs on that same goroutine.
type Client struct {
	opts Options
	log  *slog.Logger

	host string
	port string
	path string

	conn *net.TCPConn
	tls  *tlsSession
	ws   *wsframe.Client
	mqtt *mqttpkt.Session

	pipe *wakeupPipe

	mqttConnected        bool
	mqttDisconnecting    bool
	mqttDidntFinishWrite bool
	tlsHandshaking       bool
	tlsWantWrite         bool

	keepAlive    time.Duration
	lastActivity time.Time

	mu sync.Mutex

	onMessage func(topic string, payload []byte, qos uint8)
	onPuback  func(packetID uint16)

	connectErr *mqttpkt.ReasonCode

	metrics *stats
}

// New allocates a Client, wiring its resources in the order Close tears
// them down in reverse: the WebSocket framer and its buffers first, then
// the wake-up pipe, then the MQTT session and its buffers, leaving the
// socket and TLS session for Connect to create since they depend on a
// resolved address.
func New(host string, port string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ws, err := wsframe.New(host, "/mqtt", o.WsBufCap)
	if err != nil {
		return nil, newErr(ErrResource, "New", err)
	}

	pipe, err := newWakeupPipe()
	if err != nil {
		return nil, newErr(ErrResource, "New", err)
	}

	c := &Client{
		opts:    o,
		log:     o.Logger,
		host:    host,
		port:    port,
		path:    "/mqtt",
		ws:      ws,
		mqtt:    mqttpkt.NewSession(mqttpkt.VERSION311, o.SendBufCap, o.RecvBufCap),
		pipe:    pipe,
		metrics: newStats(o.ClientID),
	}
	c.mqtt.OnConnack = c.handleConnack
	c.mqtt.OnPuback = c.handlePuback
	c.mqtt.OnPublish = c.handlePublish
	return c, nil
}

// Close tears down resources in the reverse order New allocated them,
// closing the socket/TLS session only if Connect ever created one.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	if c.tls != nil {
		if err := c.tls.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.tls = nil
	}
	c.conn = nil
	if c.pipe != nil {
		if err := c.pipe.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.pipe = nil
	}
	c.ws.Destroy()
	c.mqttConnected = false
	return firstErr
}

// OnMessage registers the callback invoked for every inbound PUBLISH,
// after any QoS handshake has completed.
func (c *Client) OnMessage(fn func(topic string, payload []byte, qos uint8)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// OnPuback registers the callback invoked when a QoS1 publish is
// acknowledged.
func (c *Client) OnPuback(fn func(packetID uint16)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPuback = fn
}

// Connected reports whether the last service pass observed a live,
// CONNACK-acknowledged MQTT session.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mqttConnected
}

// Metrics exposes the client's Prometheus collectors so an embedding
// application can register them on its own gatherer, mirroring the
// teacher's package-level Stat struct (stat.go).
func (c *Client) Metrics() *stats {
	return c.metrics
}

// SetLogger installs a structured logger after construction.
func (c *Client) SetLogger(l *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}
