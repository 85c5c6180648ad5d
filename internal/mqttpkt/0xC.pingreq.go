package mqttpkt

import (
	"bytes"
	"io"
)

// PINGREQ carries nothing beyond the fixed header (MQTT v3.1.1 §3.12).
// Sent within the keep-alive interval; the server must respond with
// PINGRESP or the client closes the connection.
type PINGREQ struct {
	*FixedHeader `json:"FixedHeader,omitempty"`
}

func (pkt *PINGREQ) Kind() byte {
	return 0xC
}
func (pkt *PINGREQ) Pack(w io.Writer) error {
	return pkt.FixedHeader.Pack(w)
}
func (pkt *PINGREQ) Unpack(_ *bytes.Buffer) error {
	return nil
}
