package mqttpkt

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-io/mqttws/internal/ringbuf"
)

// ErrNeedMoreBytes signals that Sync made all the progress it could with
// the bytes currently available; the caller should arm socket-read
// interest and retry on the next service pass.
var ErrNeedMoreBytes = errors.New("mqttpkt: need more bytes")

// ConnectParams bundles the parameters needed to build a CONNECT packet.
type ConnectParams struct {
	ClientID  string
	Username  string
	Password  string
	WillTopic string
	WillMsg   []byte
	WillQoS   uint8
	WillFlag  bool
	Retain    bool
	KeepAlive uint16
}

// Session is a self-contained MQTT protocol state machine:
// init/connect/publish/subscribe/ping/disconnect/sync, a send buffer and a
// receive buffer the engine owns, and callbacks for CONNACK, PUBACK, and
// inbound PUBLISH.
type Session struct {
	version byte

	SendBuf *ringbuf.Buffer // mqtt_send_buf
	RecvBuf *ringbuf.Buffer // mqtt_recv_buf

	mu       sync.Mutex
	outbox   []Packet
	nextID   uint16
	inflight map[uint16]*PUBLISH // QoS2 bookkeeping, keyed by packet id

	decodeBuf bytes.Buffer // bytes popped from RecvBuf awaiting a full packet

	OnConnack func(*CONNACK)
	OnPuback  func(*PUBACK)
	OnPublish func(*Message, uint8)
}

// NewSession allocates a session with the given send/receive buffer
// capacities.
func NewSession(version byte, sendCap, recvCap int) *Session {
	return &Session{
		version:  version,
		SendBuf:  ringbuf.New(sendCap),
		RecvBuf:  ringbuf.New(recvCap),
		nextID:   1,
		inflight: make(map[uint16]*PUBLISH),
	}
}

// Reset clears ephemeral session state for a reconnect while preserving
// buffer allocations.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SendBuf.Reset()
	s.RecvBuf.Reset()
	s.decodeBuf.Reset()
	s.outbox = nil
	s.nextID = 1
	s.inflight = make(map[uint16]*PUBLISH)
}

func (s *Session) nextPacketID() uint16 {
	id := s.nextID
	s.nextID++
	if s.nextID == 0 {
		s.nextID = 1
	}
	return id
}

func (s *Session) submit(pkt Packet) {
	s.mu.Lock()
	s.outbox = append(s.outbox, pkt)
	s.mu.Unlock()
}

// SubmitConnect queues a CONNECT packet.
func (s *Session) SubmitConnect(p ConnectParams) {
	var flags ConnectFlags
	f := uint8(0x02) // clean session always requested
	if p.WillFlag {
		f |= 0x04 | (p.WillQoS&0x03)<<3
		if p.Retain {
			f |= 0x20
		}
	}
	if p.Username != "" {
		f |= 0x80
	}
	if p.Password != "" {
		f |= 0x40
	}
	flags = ConnectFlags(f)

	s.submit(&CONNECT{
		FixedHeader:  &FixedHeader{Version: s.version, Kind: 0x1},
		ConnectFlags: flags,
		KeepAlive:    p.KeepAlive,
		ClientID:     p.ClientID,
		WillTopic:    p.WillTopic,
		WillPayload:  p.WillMsg,
		Username:     p.Username,
		Password:     p.Password,
	})
}

// SubmitPublish queues a PUBLISH packet and returns its packet id (0 for
// QoS 0, where no id is assigned).
func (s *Session) SubmitPublish(topic string, payload []byte, qos uint8, retain bool) uint16 {
	s.mu.Lock()
	var id uint16
	if qos > 0 {
		id = s.nextPacketID()
	}
	s.mu.Unlock()

	var retainBit uint8
	if retain {
		retainBit = 1
	}
	s.submit(&PUBLISH{
		FixedHeader: &FixedHeader{Version: s.version, Kind: 0x3, QoS: qos, Retain: retainBit},
		PacketID:    id,
		Message:     &Message{TopicName: topic, Content: payload},
	})
	return id
}

// SubmitSubscribe queues a SUBSCRIBE packet and returns its packet id.
func (s *Session) SubmitSubscribe(topic string, maxQoS uint8) uint16 {
	s.mu.Lock()
	id := s.nextPacketID()
	s.mu.Unlock()
	s.submit(&SUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: s.version, Kind: 0x8, QoS: 1},
		PacketID:      id,
		Subscriptions: []Subscription{{TopicFilter: topic, MaximumQoS: maxQoS}},
	})
	return id
}

// SubmitPing queues a PINGREQ packet.
func (s *Session) SubmitPing() {
	s.submit(&PINGREQ{FixedHeader: &FixedHeader{Version: s.version, Kind: 0xC}})
}

// SubmitDisconnect queues a DISCONNECT packet.
func (s *Session) SubmitDisconnect() {
	s.submit(&DISCONNECT{FixedHeader: &FixedHeader{Version: s.version, Kind: 0xE}})
}

// PendingOutbound reports whether packets are still queued waiting to be
// encoded into SendBuf (used by disconnect's service_all drain loop).
func (s *Session) PendingOutbound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outbox) > 0
}

// encodeOutbound packs queued submissions into SendBuf until a packet
// doesn't fit or the outbox drains.
func (s *Session) encodeOutbound() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.outbox) > 0 {
		pkt := s.outbox[0]
		var buf bytes.Buffer
		if err := pkt.Pack(&buf); err != nil {
			return fmt.Errorf("mqttpkt: pack %T: %w", pkt, err)
		}
		if buf.Len() > s.SendBuf.Free() {
			return nil // try again once PAL-send has drained more room
		}
		s.SendBuf.Write(buf.Bytes())
		s.outbox = s.outbox[1:]
	}
	return nil
}

// Sync is the MQTT library's single entry point: it pulls newly arrived
// bytes via palRecv into RecvBuf, decodes and dispatches every complete
// packet found there, encodes queued outbound packets into SendBuf, and
// drains SendBuf through palSend. It returns didntFinishWrite=true when
// palSend could not accept every byte, so the caller knows to retry the
// write on its next pass instead of blocking for it here.
func (s *Session) Sync(palRecv func([]byte) int, palSend func([]byte) int) (didntFinishWrite bool, err error) {
	if dst := s.RecvBuf.LinearInsert(); len(dst) > 0 && palRecv != nil {
		if n := palRecv(dst); n > 0 {
			s.RecvBuf.Produced(n)
		}
	}

	if err := s.decodeAvailable(); err != nil && !errors.Is(err, ErrNeedMoreBytes) {
		return false, err
	}

	if err := s.encodeOutbound(); err != nil {
		return false, err
	}

	for s.SendBuf.Len() > 0 {
		src := s.SendBuf.LinearRead()
		n := palSend(src)
		if n <= 0 {
			return true, nil
		}
		s.SendBuf.Consumed(n)
		if n < len(src) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) decodeAvailable() error {
	for {
		chunk := s.RecvBuf.LinearRead()
		if len(chunk) == 0 {
			break
		}
		s.decodeBuf.Write(chunk)
		s.RecvBuf.Consumed(len(chunk))
	}

	for {
		raw := s.decodeBuf.Bytes()
		n, total, ok := peekPacketSize(raw)
		if !ok {
			return ErrNeedMoreBytes
		}
		_ = n
		pkt, err := Unpack(s.version, bytes.NewReader(raw[:total]))
		if err != nil {
			return fmt.Errorf("mqttpkt: decode: %w", err)
		}
		s.dispatch(pkt)

		remaining := append([]byte(nil), raw[total:]...)
		s.decodeBuf.Reset()
		s.decodeBuf.Write(remaining)
	}
}

// peekPacketSize reports the total wire size (fixed header + remaining
// length varint + payload) of the packet starting at buf[0], without
// consuming it, so decodeAvailable can tell "not enough bytes yet" apart
// from a genuine protocol error.
func peekPacketSize(buf []byte) (headerLen, total int, ok bool) {
	if len(buf) < 2 {
		return 0, 0, false
	}
	var remaining, multiplier uint32
	pos := 1
	for {
		if pos >= len(buf) {
			return 0, 0, false
		}
		b := buf[pos]
		remaining |= uint32(b&0x7F) * multiplier1(multiplier)
		pos++
		if b&0x80 == 0 {
			break
		}
		multiplier++
		if multiplier > 3 {
			return 0, 0, false
		}
	}
	total = pos + int(remaining)
	if len(buf) < total {
		return pos, total, false
	}
	return pos, total, true
}

func multiplier1(shift uint32) uint32 {
	m := uint32(1)
	for i := uint32(0); i < shift; i++ {
		m *= 128
	}
	return m
}

func (s *Session) dispatch(pkt Packet) {
	switch p := pkt.(type) {
	case *CONNACK:
		if s.OnConnack != nil {
			s.OnConnack(p)
		}
	case *PUBACK:
		if s.OnPuback != nil {
			s.OnPuback(p)
		}
	case *PUBLISH:
		switch p.QoS {
		case 0:
			if s.OnPublish != nil {
				s.OnPublish(p.Message, p.QoS)
			}
		case 1:
			if s.OnPublish != nil {
				s.OnPublish(p.Message, p.QoS)
			}
			s.submit(&PUBACK{FixedHeader: &FixedHeader{Version: s.version, Kind: 0x4}, PacketID: p.PacketID})
		case 2:
			s.mu.Lock()
			s.inflight[p.PacketID] = p
			s.mu.Unlock()
			s.submit(&PUBREC{FixedHeader: &FixedHeader{Version: s.version, Kind: 0x5}, PacketID: p.PacketID})
		}
	case *PUBREC:
		s.submit(&PUBREL{FixedHeader: &FixedHeader{Version: s.version, Kind: 0x6, QoS: 1}, PacketID: p.PacketID})
	case *PUBREL:
		s.mu.Lock()
		stored, ok := s.inflight[p.PacketID]
		delete(s.inflight, p.PacketID)
		s.mu.Unlock()
		if ok && s.OnPublish != nil {
			s.OnPublish(stored.Message, 2)
		}
		s.submit(&PUBCOMP{FixedHeader: &FixedHeader{Version: s.version, Kind: 0x7}, PacketID: p.PacketID})
	case *PUBCOMP:
		// QoS2 publisher-side handshake complete; nothing further to do.
	case *SUBACK, *UNSUBACK, *PINGRESP:
		// Acknowledged; no application-visible callback in this client.
	default:
		_ = p
	}
}
