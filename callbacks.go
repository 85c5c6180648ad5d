package mqttws

import (
	"time"

	"github.com/golang-io/mqttws/internal/mqttpkt"
)

// handleConnack is mqttpkt.Session's OnConnack trampoline: it updates the
// engine's own mqttConnected flag, which Connect polls for, and logs the
// broker's return code.
func (c *Client) handleConnack(pkt *mqttpkt.CONNACK) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pkt.ConnectReturnCode.Code == 0 {
		c.mqttConnected = true
		c.lastActivity = time.Now()
	} else {
		rc := connackReason(pkt.ConnectReturnCode.Code)
		c.connectErr = &rc
	}
	if c.log != nil {
		c.log.Info("mqttws: connack",
			"code", pkt.ConnectReturnCode.Code,
			"session_present", pkt.SessionPresent,
		)
	}
	c.metrics.connacks.Inc()
}

// handlePuback forwards a QoS1 acknowledgment to the application callback,
// if one is registered.
func (c *Client) handlePuback(pkt *mqttpkt.PUBACK) {
	c.mu.Lock()
	fn := c.onPuback
	c.mu.Unlock()
	c.metrics.pubacksIn.Inc()
	if fn != nil {
		fn(pkt.PacketID)
	}
}

// maxCallbackTopicBytes is the longest topic name handed to an
// application callback unmodified. A Go string carries its own length
// rather than being null-terminated, so the 511-byte-plus-terminator
// limit this engine's reference behavior applies becomes a plain
// 511-byte truncation here; the payload itself is always delivered
// unchanged regardless of topic length.
const maxCallbackTopicBytes = 511

// handlePublish forwards an inbound message to the application callback
// once any QoS handshake mqttpkt.Session performed is complete.
func (c *Client) handlePublish(msg *mqttpkt.Message, qos uint8) {
	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()
	c.metrics.messagesIn.Inc()
	if fn != nil {
		topic := msg.TopicName
		if len(topic) > maxCallbackTopicBytes {
			topic = topic[:maxCallbackTopicBytes]
		}
		fn(topic, msg.Content, qos)
	}
}
