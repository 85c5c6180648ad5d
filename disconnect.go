package mqttws

import (
	"errors"
	"time"
)

var errNotDrained = errors.New("mqttws: outbound data not drained before deadline")

// Disconnect performs a graceful shutdown across four quarters of budget:
// flush application data already in flight, submit MQTT DISCONNECT and
// drain it, send a WebSocket CLOSE frame, then drive the service routine
// until it reports the connection is gone and close the transport.
func (c *Client) Disconnect(budget time.Duration) error {
	c.mu.Lock()
	c.mqttDisconnecting = true
	c.mu.Unlock()

	quarter := budget / 4

	// 1. Block new submits (already set above), flush anything queued
	// before disconnect began.
	_ = c.serviceAll(quarter)

	// 2. Submit DISCONNECT and drain it.
	c.mqtt.SubmitDisconnect()
	_ = c.serviceAll(quarter)

	// 3. Send the WebSocket CLOSE frame and drain it. Many brokers tear
	// down the TCP connection on MQTT DISCONNECT, so the close frame may
	// never egress; don't escalate a failure here.
	if err := c.ws.SendClose(1000); err != nil && c.log != nil { // Normal Closure
		c.log.Warn("mqttws: close frame not queued", "err", err)
	}
	_ = c.serviceAll(quarter)

	// 4. Drive the service routine until it reports the connection is
	// gone (typically a websocket/transport error once the peer closes),
	// then tear the transport down regardless of how it ended.
	c.drainUntilDropped(quarter)

	c.metrics.Connected.Set(0)
	return c.Close()
}

// drainUntilDropped calls ServiceOnce until it returns an error (the peer
// closing the connection is the expected outcome) or budget elapses.
func (c *Client) drainUntilDropped(budget time.Duration) {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if err := c.ServiceOnce(50 * time.Millisecond); err != nil {
			return
		}
	}
}

// serviceAll drives ServiceOnce until neither MQTT nor the WebSocket
// framer has anything left to write, or budget elapses. Disconnect uses
// it to flush each stage before moving on to the next.
func (c *Client) serviceAll(budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for c.mqtt.PendingOutbound() || c.mqttDidntFinishWrite || c.ws.BufWrite.Len() > 0 {
		if time.Now().After(deadline) {
			return newErr(ErrTimedOut, "serviceAll", errNotDrained)
		}
		if err := c.ServiceOnce(50 * time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
