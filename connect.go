package mqttws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/golang-io/mqttws/internal/mqttpkt"
)

// Connect establishes the transport and MQTT session: reset ephemeral
// state, resolve the host, dial TCP with TCP_NODELAY, begin (but not
// complete) the TLS handshake, submit CONNECT, then loop the service
// routine until CONNACK or a connect-phase timeout.
func (c *Client) Connect(ctx context.Context, p ConnectParams) error {
	c.mu.Lock()
	c.mqttConnected = false
	c.mqttDisconnecting = false
	c.mqttDidntFinishWrite = false
	c.connectErr = nil
	c.mu.Unlock()

	c.mqtt.Reset()
	if err := c.ws.Reset(); err != nil {
		return newErr(ErrResource, "Connect", err)
	}

	resolver := &net.Resolver{}
	addr := net.JoinHostPort(c.host, c.port)
	var d net.Dialer
	d.Resolver = resolver
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return newErr(ErrResolve, "Connect", err)
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return newErr(ErrTransport, "Connect", errors.New("dialed connection is not TCP"))
	}
	if err := tcpConn.SetNoDelay(true); err != nil {
		tcpConn.Close()
		return newErr(ErrTransport, "Connect", err)
	}
	c.conn = tcpConn

	cfg := c.opts.TLSClientConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = c.host
	}
	c.tls = newTLSSession(tcpConn, cfg)
	c.tlsHandshaking = true

	keepAlive := p.KeepAlive
	if keepAlive == 0 {
		keepAlive = defaultKeepAlive
	}
	c.keepAlive = time.Duration(keepAlive) * time.Second
	c.lastActivity = time.Now()

	clientID := p.ClientID
	if clientID == "" {
		clientID = c.opts.ClientID
	}
	c.mqtt.SubmitConnect(mqttpkt.ConnectParams{
		ClientID:  clientID,
		Username:  p.Username,
		Password:  p.Password,
		WillTopic: p.WillTopic,
		WillMsg:   p.WillMsg,
		WillQoS:   p.WillQoS,
		WillFlag:  p.WillFlag,
		Retain:    p.Retain,
		KeepAlive: keepAlive,
	})

	deadline, hasDeadline := ctx.Deadline()
	for {
		if err := c.ServiceOnce(200 * time.Millisecond); err != nil {
			return err
		}
		if c.Connected() {
			c.metrics.Connected.Set(1)
			return nil
		}
		c.mu.Lock()
		refused := c.connectErr
		c.mu.Unlock()
		if refused != nil {
			return newErr(ErrMqttProto, "Connect", fmt.Errorf("broker refused connection: %s", refused))
		}
		if hasDeadline && time.Now().After(deadline) {
			return newErr(ErrTimedOut, "Connect", errors.New("timed out waiting for CONNACK"))
		}
		select {
		case <-ctx.Done():
			return newErr(ErrTimedOut, "Connect", ctx.Err())
		default:
		}
	}
}
