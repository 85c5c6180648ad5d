package mqttws

// palSend and palRecv adapt mqttpkt.Session.Sync's byte-accepted-count
// contract to the WebSocket framer. The MQTT session only knows "give me
// bytes" / "take these bytes back"; it has no notion of frames, masking,
// or handshakes, so this file is the entire platform-adaptation-layer
// surface between the two.

// palSend hands src to the WebSocket client's outbound buffer, framing it
// as a single binary WebSocket message, and reports how many bytes of src
// were accepted. A return less than len(src) tells Session.Sync to retry
// the remainder next pass.
func (c *Client) palSend(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	return c.ws.Send(src)
}

// palRecv copies any MQTT bytes the WebSocket framer has already
// extracted from inbound frames (c.ws.BufToMQTT) into dst, for
// Session.Sync to decode.
func (c *Client) palRecv(dst []byte) int {
	avail := c.ws.BufToMQTT.LinearRead()
	if len(avail) == 0 {
		return 0
	}
	n := copy(dst, avail)
	c.ws.BufToMQTT.Consumed(n)
	return n
}
