package mqttpkt

import (
	"bytes"
	"fmt"
	"io"
)

// CONNACK is the server's acknowledgment of a CONNECT: a session-present
// flag and a connect return code (MQTT v3.1.1 §3.2).
type CONNACK struct {
	*FixedHeader

	// SessionPresent reports whether the server held session state for
	// this client; only meaningful when the client did not request a
	// clean session.
	SessionPresent uint8

	// ConnectReturnCode is the server's accept/reject verdict. A
	// non-zero code means the server has closed (or is about to close)
	// the network connection (MQTT-3.2.2-5).
	ConnectReturnCode ReasonCode `json:"ConnectReturnCode,omitempty"`
}

func (pkt *CONNACK) Kind() byte { return 0x2 }

func (pkt *CONNACK) String() string {
	return fmt.Sprintf("[0x2]ConnectReturnCode=%d", pkt.ConnectReturnCode.Code)
}

func (pkt *CONNACK) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.WriteByte(pkt.SessionPresent)
	buf.WriteByte(pkt.ConnectReturnCode.Code)

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *CONNACK) Unpack(buf *bytes.Buffer) error {
	pkt.SessionPresent = buf.Next(1)[0]
	pkt.ConnectReturnCode = ReasonCode{Code: buf.Next(1)[0]}
	return nil
}
