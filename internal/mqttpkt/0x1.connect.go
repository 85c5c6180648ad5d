package mqttpkt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang-io/requests"
)

// NAME is the protocol name field every CONNECT packet opens with:
// length-prefixed "MQTT" (MQTT-3.1.2-1).
var NAME = []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}

// CONNECT is the first packet a client ever sends: protocol name and
// level, connect flags, keep-alive, client ID, and the optional will
// topic/payload and username/password fields that ConnectFlags says are
// present.
type CONNECT struct {
	*FixedHeader

	ConnectFlags ConnectFlags
	KeepAlive    uint16

	ClientID    string `json:"ClientID,omitempty"`
	WillTopic   string
	WillPayload []byte
	Username    string `json:"Username,omitempty"`
	Password    string `json:"Password,omitempty"`
}

func (pkt *CONNECT) Kind() byte { return 0x1 }

func (pkt *CONNECT) String() string { return "[0x1]CONNECT" }

// Pack serializes the CONNECT packet: protocol name/level, connect
// flags built from which optional fields are populated, keep-alive, then
// client ID and the optional will/credential fields in wire order
// (MQTT-3.1.3-1).
func (pkt *CONNECT) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(NAME)
	buf.WriteByte(pkt.FixedHeader.Version)

	uf := s2i(pkt.Username) // UserNameFlag, bit 7
	pf := s2i(pkt.Password) // PasswordFlag, bit 6
	wr := uint8(0)          // WillRetain, bit 5
	wq := uint8(0)          // WillQoS, bits 4-3
	wf := uint8(0)          // WillFlag, bit 2

	if pkt.WillTopic != "" || pkt.WillPayload != nil {
		wf = 1
		wq = 1 // will QoS 1 unless ConnectFlags carries the will settings
		if pkt.ConnectFlags.WillFlag() {
			wq = pkt.ConnectFlags.WillQoS()
			if pkt.ConnectFlags.WillRetain() {
				wr = 1
			}
		}
	}

	const cleanSession = 1 << 1 // always requested; see Session.SubmitConnect
	flag := uf<<7 | pf<<6 | wr<<5 | wq<<3 | wf<<2 | cleanSession
	buf.WriteByte(flag)

	buf.Write(i2b(pkt.KeepAlive))

	if len(pkt.ClientID) > 23 {
		return fmt.Errorf("client ID too long: %d characters, maximum allowed is 23", len(pkt.ClientID))
	}
	buf.Write(s2b(pkt.ClientID))

	if wf == 1 {
		buf.Write(s2b(pkt.WillTopic))
		buf.Write(s2b(pkt.WillPayload))
	}
	if pkt.Username != "" {
		buf.Write(s2b(pkt.Username))
	}
	if pkt.Password != "" {
		buf.Write(s2b(pkt.Password))
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Unpack parses a CONNECT packet off the wire, validating the reserved
// bit, will-QoS range, and flag consistency the protocol requires
// (MQTT-3.1.2-3, MQTT-3.1.2-11, MQTT-3.1.2-14, MQTT-3.1.2-22). A
// server-assigned client ID is generated when the payload leaves it
// empty.
func (pkt *CONNECT) Unpack(buf *bytes.Buffer) error {
	name := buf.Next(6)
	if !bytes.Equal(name, NAME) {
		return fmt.Errorf("%w: Len=%d, %v", ErrMalformedProtocolName, pkt.RemainingLength, name)
	}

	pkt.Version, pkt.ConnectFlags = buf.Next(1)[0], ConnectFlags(buf.Next(1)[0])

	if pkt.ConnectFlags.Reserved() != 0 {
		return ErrMalformedPacket
	}
	if pkt.ConnectFlags.WillQoS() > 2 {
		return ErrProtocolViolationQoS
	}
	if !pkt.ConnectFlags.WillFlag() && (pkt.ConnectFlags.WillRetain() || pkt.ConnectFlags.WillQoS() != 0) {
		return ErrProtocolViolation
	}

	pkt.KeepAlive = binary.BigEndian.Uint16(buf.Next(2))

	switch pkt.Version {
	case VERSION311, VERSION310:
	default:
		return ErrMalformedProtocolVer
	}

	pkt.ClientID = decodeUTF8[string](buf)
	if pkt.ClientID == "" {
		pkt.ClientID = requests.GenId()
	}

	if pkt.ConnectFlags.WillFlag() {
		pkt.WillTopic = decodeUTF8[string](buf)
		pkt.WillPayload = decodeUTF8[[]byte](buf)
		if pkt.WillTopic == "" {
			return ErrProtocolViolation
		}
	}

	if pkt.ConnectFlags.UserNameFlag() {
		pkt.Username = decodeUTF8[string](buf)
	} else if pkt.ConnectFlags.PasswordFlag() {
		return ErrMalformedPassword
	}

	if pkt.ConnectFlags.PasswordFlag() {
		pkt.Password = decodeUTF8[string](buf)
	}

	return nil
}

// ConnectFlags is the 8-bit flag byte in the CONNECT variable header:
// UserNameFlag(7) PasswordFlag(6) WillRetain(5) WillQoS(4-3) WillFlag(2)
// CleanSession(1) Reserved(0).
type ConnectFlags uint8

func (f ConnectFlags) Reserved() uint8 { return uint8(f) & 0x01 }

func (f ConnectFlags) CleanStart() bool { return uint8(f)&0x02 == 0x02 }

func (f ConnectFlags) WillFlag() bool { return uint8(f)&0x04 == 0x04 }

func (f ConnectFlags) WillQoS() uint8 { return (uint8(f) & 0x18) >> 3 }

func (f ConnectFlags) WillRetain() bool { return uint8(f)&0x20 == 0x20 }

func (f ConnectFlags) UserNameFlag() bool { return uint8(f)&0x80 == 0x80 }

func (f ConnectFlags) PasswordFlag() bool { return uint8(f)&0x40 == 0x40 }
