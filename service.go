package mqttws

import (
	"errors"
	"time"

	"github.com/golang-io/mqttws/internal/wsframe"
)

// ServiceOnce drives the engine forward by exactly one readiness-driven
// pass: poll, handle a due keep-alive, step TLS, deframe WebSocket
// traffic, sync the MQTT session, drain pending writes, and finally drain
// the wake-up pipe. A caller runs this in a loop (directly, or via Run) on
// a single goroutine; it is not safe to call concurrently with itself.
func (c *Client) ServiceOnce(timeout time.Duration) error {
	if c.conn == nil || c.tls == nil {
		return newErr(ErrTransport, "ServiceOnce", errors.New("not connected"))
	}

	// 1. Bound the poll timeout by the time remaining until a PINGREQ is
	// due, anchored to lastActivity, so a longer caller-supplied timeout
	// never delays a ping past the keep-alive window. A non-positive
	// bound means a ping is already due; poll must not block at all.
	timeoutMS := int(timeout / time.Millisecond)
	if c.keepAlive > 0 {
		boundMS := int(keepAliveBound(c.lastActivity, c.keepAlive) / time.Millisecond)
		if boundMS < 0 {
			boundMS = 0
		}
		if timeoutMS < 0 || boundMS < timeoutMS {
			timeoutMS = boundMS
		}
	}

	fd, err := socketFD(c.conn)
	if err != nil {
		return newErr(ErrTransport, "ServiceOnce", err)
	}

	// 2. Poll the socket and the wake-up pipe together. Arm write
	// interest whenever there's outbound data pending at any layer: MQTT
	// didn't finish writing, TLS itself is blocked on a write, or the
	// WebSocket framer still has bytes queued in BufWrite (e.g. a CLOSE
	// frame staged during Disconnect).
	want := interest{
		read: true,
		write: c.mqttDidntFinishWrite || c.tlsHandshaking || c.tlsWantWrite ||
			c.ws.BufWrite.Len() > 0,
	}
	res, err := poll(fd, c.pipe.readFD, want, timeoutMS)
	if err != nil {
		return newErr(ErrTransport, "ServiceOnce", err)
	}

	// 3. Check whether a PINGREQ is due unconditionally, not only when
	// poll timed out: socket readability or a wake-up pipe write can make
	// poll return before the timeout even once the keep-alive bound has
	// already elapsed, and skipping the check in that case would delay
	// the ping past keep_alive seconds.
	if duePing(c.lastActivity, c.keepAlive) {
		c.mqtt.SubmitPing()
		c.metrics.pings.Inc()
		c.lastActivity = time.Now()
	}

	// 4. Interest is recomputed fresh each pass below; nothing to clear
	// explicitly since `want` above was already this pass's request, not
	// accumulated state.

	// 5. TLS read stage.
	if c.tlsHandshaking {
		switch c.tls.Handshake() {
		case TLSOk:
			c.tlsHandshaking = false
		case TLSWantRead, TLSWantWrite:
			// try again next pass
		case TLSFatal:
			return newErr(ErrTransport, "ServiceOnce", errors.New("tls handshake failed"))
		}
	} else if res.socketReadable {
		if err := c.tlsReadInto(c.ws.BufRead); err != nil {
			return err
		}
	}

	// 6. WebSocket processing: deframe everything currently buffered.
	if !c.tlsHandshaking {
		toMQTTBefore := c.ws.BufToMQTT.Len()
		for {
			status, err := c.ws.Process()
			if err != nil {
				return newErr(ErrWsProto, "ServiceOnce", err)
			}
			switch status {
			case wsframe.StatusOK:
				continue
			case wsframe.StatusNeedMoreBytes:
			case wsframe.StatusClosed:
				c.mqttConnected = false
				return newErr(ErrWsProto, "ServiceOnce", errors.New("websocket closed by peer"))
			}
			break
		}
		if grew := c.ws.BufToMQTT.Len() - toMQTTBefore; grew > 0 {
			c.metrics.wsBytesIn.Add(float64(grew))
		}
	}

	// 7. MQTT sync: decode inbound, encode+drain outbound via the PAL.
	if !c.tlsHandshaking {
		didntFinish, err := c.mqtt.Sync(c.palRecv, c.palSend)
		if err != nil {
			return newErr(ErrMqttProto, "ServiceOnce", err)
		}
		c.mqttDidntFinishWrite = didntFinish
	}

	// 8. TLS write stage: push anything the framer queued for the wire.
	if !c.tlsHandshaking {
		if err := c.tlsDrainWrite(c.ws.BufWrite); err != nil {
			return err
		}
	}

	// 9. Drain the wake-up pipe so the next poll blocks again until a new
	// wake-up arrives.
	if res.pipeReadable {
		c.pipe.Drain()
	}

	// 10. Ok.
	c.metrics.servicePasse.Inc()
	return nil
}

// Run calls ServiceOnce in a loop until stop is signaled or a fatal error
// occurs. It is the convenience entry point callers use once Connect has
// succeeded.
func (c *Client) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		if err := c.ServiceOnce(time.Duration(defaultKeepAlive) * time.Second); err != nil {
			return err
		}
		if c.mqttDisconnecting && !c.mqtt.PendingOutbound() && !c.mqttDidntFinishWrite {
			return nil
		}
	}
}
