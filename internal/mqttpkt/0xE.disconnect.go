package mqttpkt

import (
	"bytes"
	"fmt"
	"io"
)

// DISCONNECT tells the server the client is closing the connection
// cleanly (MQTT v3.1.1 §3.14): no variable header, no payload. Fixed
// header flags must be 0 (MQTT-3.14.1-1).
type DISCONNECT struct {
	*FixedHeader `json:"FixedHeader,omitempty"`
}

func (pkt *DISCONNECT) Kind() byte { return 0xE }

func (pkt *DISCONNECT) Pack(w io.Writer) error {
	if pkt.Dup != 0 || pkt.QoS != 0 || pkt.Retain != 0 {
		return ErrMalformedFlags
	}
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}

func (pkt *DISCONNECT) Unpack(buf *bytes.Buffer) error {
	if pkt.FixedHeader.RemainingLength != 0 {
		return ErrMalformedPacket
	}
	return nil
}

func (pkt *DISCONNECT) String() string {
	if pkt == nil {
		return "DISCONNECT<nil>"
	}
	return fmt.Sprintf("DISCONNECT{Version:0x%02X}", pkt.Version)
}
