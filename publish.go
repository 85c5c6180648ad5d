package mqttws

// Publish queues a PUBLISH packet and wakes the service thread so it gets
// encoded and flushed on the next pass, rather than waiting for whatever
// the poll timeout happens to be. It returns the assigned packet id (0
// for QoS 0, which has none).
//
// Publish fails if the session isn't connected or is already tearing
// down: queuing a packet behind a DISCONNECT that's already in flight
// would either be silently dropped by the broker or sent after the
// connection has been torn down locally.
func (c *Client) Publish(topic string, payload []byte, qos uint8, retain bool) (uint16, error) {
	c.mu.Lock()
	connected, disconnecting := c.mqttConnected, c.mqttDisconnecting
	c.mu.Unlock()
	if !connected || disconnecting {
		return 0, newErr(ErrParam, "Publish", errNotConnected)
	}
	id := c.mqtt.SubmitPublish(topic, payload, qos, retain)
	c.metrics.publishes.Inc()
	c.pipe.Wake()
	return id, nil
}

// Subscribe queues a SUBSCRIBE packet for a single topic filter and wakes
// the service thread. Same connected/disconnecting guard as Publish.
func (c *Client) Subscribe(topicFilter string, maxQoS uint8) (uint16, error) {
	c.mu.Lock()
	connected, disconnecting := c.mqttConnected, c.mqttDisconnecting
	c.mu.Unlock()
	if !connected || disconnecting {
		return 0, newErr(ErrParam, "Subscribe", errNotConnected)
	}
	id := c.mqtt.SubmitSubscribe(topicFilter, maxQoS)
	c.pipe.Wake()
	return id, nil
}
