// Package wsframe is a standalone WebSocket framer: new/reset/destroy/
// send/process, internal read and write ring buffers, and a state
// indicating whether the handshake is complete. It is built on top of
// gorilla/websocket's wire-format constants (opcodes, close codes,
// masking) rather than gorilla's own Conn, because Conn owns a net.Conn
// end to end and cannot hand framed bytes to a PAL adapter through
// pre-allocated ring buffers.
package wsframe

import (
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/golang-io/mqttws/internal/ringbuf"
)

// handshakeGUID is the RFC 6455 magic value used to validate the server's
// Sec-WebSocket-Accept header.
const handshakeGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// State is the framer's handshake/session state machine.
type State int

const (
	StateHandshaking State = iota
	StateEstablished
	StateClosed
)

// Status is the outcome of a single Process call.
type Status int

const (
	// StatusOK means the framer made progress and buf_read was fully
	// consumed for now.
	StatusOK Status = iota
	// StatusNeedMoreBytes means a frame or the handshake response is
	// incomplete; the caller should arm socket-read interest.
	StatusNeedMoreBytes
	// StatusProtoError means a frame or handshake violated the protocol.
	StatusProtoError
	// StatusClosed means a CLOSE frame was processed.
	StatusClosed
)

// Client is a client-role WebSocket framer driven entirely off ring
// buffers; it never touches a socket directly.
type Client struct {
	Host string
	Path string

	BufRead   *ringbuf.Buffer // raw bytes arriving from TLS
	BufWrite  *ringbuf.Buffer // raw bytes queued for TLS
	BufToMQTT *ringbuf.Buffer // reassembled binary-frame payloads

	state        State
	acceptWant   string
	handshakeBuf bytes.Buffer // accumulates the HTTP response until headers are complete

	// partial holds bytes of a frame header/payload that straddled two
	// Process calls, so framing survives TLS record boundaries.
	partial bytes.Buffer
}

// New allocates a framer with the given ring capacities and immediately
// queues the client handshake request into BufWrite.
func New(host, path string, bufCap int) (*Client, error) {
	c := &Client{
		Host:      host,
		Path:      path,
		BufRead:   ringbuf.New(bufCap),
		BufWrite:  ringbuf.New(bufCap),
		BufToMQTT: ringbuf.New(bufCap),
	}
	if err := c.writeHandshakeRequest(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset discards all buffered state and re-arms the handshake, for reuse
// across a reconnect.
func (c *Client) Reset() error {
	c.BufRead.Reset()
	c.BufWrite.Reset()
	c.BufToMQTT.Reset()
	c.handshakeBuf.Reset()
	c.partial.Reset()
	c.state = StateHandshaking
	return c.writeHandshakeRequest()
}

// Destroy releases the framer. The ring buffers are garbage-collected
// normally; Destroy marks the framer closed so a caller cannot
// accidentally resume sending on it until Reset re-arms the handshake.
func (c *Client) Destroy() {
	c.state = StateClosed
}

// State reports the current handshake/session state.
func (c *Client) State() State { return c.state }

func (c *Client) writeHandshakeRequest() error {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("wsframe: generate key: %w", err)
	}
	secKey := base64.StdEncoding.EncodeToString(key)
	sum := sha1.Sum([]byte(secKey + handshakeGUID))
	c.acceptWant = base64.StdEncoding.EncodeToString(sum[:])

	path := c.Path
	if path == "" {
		path = "/mqtt"
	}
	req := "GET " + path + " HTTP/1.1\r\n" +
		"Host: " + c.Host + "\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: " + secKey + "\r\n" +
		"Sec-WebSocket-Protocol: mqtt\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	if n := c.BufWrite.Write([]byte(req)); n != len(req) {
		return errors.New("wsframe: handshake request does not fit write buffer")
	}
	return nil
}

// Send wraps p into a single masked BINARY frame (opcode
// websocket.BinaryMessage) and appends it to BufWrite. It returns the
// number of payload bytes actually accepted; a short return means the
// ring is full and the caller must retry on a later pass.
func (c *Client) Send(p []byte) int {
	if c.state != StateEstablished {
		return 0
	}
	frame := maskFrame(websocket.BinaryMessage, p)
	if c.BufWrite.Free() < len(frame) {
		return 0
	}
	c.BufWrite.Write(frame)
	return len(p)
}

// SendClose sends a CLOSE frame with the given status code (opcode
// CONNECTION_CLOSE, big-endian 2-byte status, 1000 = Normal Closure).
func (c *Client) SendClose(code uint16) error {
	if c.state == StateClosed {
		return nil
	}
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, code)
	frame := maskFrame(websocket.CloseMessage, payload)
	if n := c.BufWrite.Write(frame); n != len(frame) {
		return errors.New("wsframe: close frame does not fit write buffer")
	}
	return nil
}

// Process drives the framer forward using whatever is available in
// BufRead: while handshaking it looks for a complete HTTP response; once
// established it deframes WebSocket frames and appends BINARY payloads to
// BufToMQTT.
func (c *Client) Process() (Status, error) {
	switch c.state {
	case StateHandshaking:
		return c.processHandshake()
	case StateEstablished:
		return c.processFrames()
	default:
		return StatusProtoError, errors.New("wsframe: process called in closed state")
	}
}

func (c *Client) processHandshake() (Status, error) {
	chunk := c.BufRead.LinearRead()
	for len(chunk) > 0 {
		c.handshakeBuf.Write(chunk)
		c.BufRead.Consumed(len(chunk))
		chunk = c.BufRead.LinearRead()
	}
	raw := c.handshakeBuf.Bytes()
	idx := bytes.Index(raw, []byte("\r\n\r\n"))
	if idx < 0 {
		return StatusNeedMoreBytes, nil
	}
	header := string(raw[:idx])
	if !bytes.HasPrefix(raw, []byte("HTTP/1.1 101")) {
		return StatusProtoError, fmt.Errorf("wsframe: handshake rejected: %q", header)
	}
	if !bytes.Contains(raw[:idx], []byte("Sec-WebSocket-Accept: "+c.acceptWant)) {
		return StatusProtoError, errors.New("wsframe: Sec-WebSocket-Accept mismatch")
	}
	// Any bytes after the header terminator are already frame data.
	leftover := raw[idx+4:]
	c.handshakeBuf.Reset()
	c.state = StateEstablished
	if len(leftover) > 0 {
		c.partial.Write(leftover)
		return c.processFrames()
	}
	return StatusOK, nil
}

// frameHeader is the minimal decoded view of one server-to-client frame.
// The server never masks frames it sends to a client (RFC 6455 §5.1).
type frameHeader struct {
	fin      bool
	opcode   byte
	payload  uint64
	headerSz int
}

func (c *Client) processFrames() (Status, error) {
	chunk := c.BufRead.LinearRead()
	for len(chunk) > 0 {
		c.partial.Write(chunk)
		c.BufRead.Consumed(len(chunk))
		chunk = c.BufRead.LinearRead()
	}

	for {
		buf := c.partial.Bytes()
		hdr, ok := parseFrameHeader(buf)
		if !ok {
			return StatusNeedMoreBytes, nil
		}
		total := hdr.headerSz + int(hdr.payload)
		if len(buf) < total {
			return StatusNeedMoreBytes, nil
		}
		payload := buf[hdr.headerSz:total]

		switch hdr.opcode {
		case websocket.BinaryMessage, websocket.ContinuationMessage:
			if c.BufToMQTT.Write(payload) != len(payload) {
				return StatusProtoError, errors.New("wsframe: buf_to_mqtt full")
			}
		case websocket.TextMessage:
			return StatusProtoError, errors.New("wsframe: unexpected text frame")
		case websocket.PingMessage:
			// A real engine would echo a PONG; out of scope for the
			// core plumbing this package models.
		case websocket.PongMessage:
		case websocket.CloseMessage:
			c.consumeFrame(total)
			c.state = StateClosed
			return StatusClosed, nil
		default:
			return StatusProtoError, fmt.Errorf("wsframe: unknown opcode %d", hdr.opcode)
		}
		c.consumeFrame(total)
	}
}

func (c *Client) consumeFrame(total int) {
	rest := append([]byte(nil), c.partial.Bytes()[total:]...)
	c.partial.Reset()
	c.partial.Write(rest)
}

func parseFrameHeader(buf []byte) (frameHeader, bool) {
	if len(buf) < 2 {
		return frameHeader{}, false
	}
	fin := buf[0]&0x80 != 0
	opcode := buf[0] & 0x0F
	masked := buf[1]&0x80 != 0
	length := uint64(buf[1] & 0x7F)
	pos := 2
	switch length {
	case 126:
		if len(buf) < pos+2 {
			return frameHeader{}, false
		}
		length = uint64(binary.BigEndian.Uint16(buf[pos:]))
		pos += 2
	case 127:
		if len(buf) < pos+8 {
			return frameHeader{}, false
		}
		length = binary.BigEndian.Uint64(buf[pos:])
		pos += 8
	}
	if masked {
		pos += 4 // a compliant server never masks, but tolerate the header width
	}
	if len(buf) < pos {
		return frameHeader{}, false
	}
	return frameHeader{fin: fin, opcode: opcode, payload: length, headerSz: pos}, true
}

// maskFrame builds a complete client-to-server frame: clients must mask
// every frame they send (RFC 6455 §5.3).
func maskFrame(opcode int, payload []byte) []byte {
	var header bytes.Buffer
	header.WriteByte(0x80 | byte(opcode)) // FIN=1, opcode
	n := len(payload)
	switch {
	case n <= 125:
		header.WriteByte(0x80 | byte(n))
	case n <= 0xFFFF:
		header.WriteByte(0x80 | 126)
		_ = binary.Write(&header, binary.BigEndian, uint16(n))
	default:
		header.WriteByte(0x80 | 127)
		_ = binary.Write(&header, binary.BigEndian, uint64(n))
	}
	var mask [4]byte
	_, _ = rand.Read(mask[:])
	header.Write(mask[:])
	masked := make([]byte, n)
	for i, b := range payload {
		masked[i] = b ^ mask[i%4]
	}
	return append(header.Bytes(), masked...)
}
