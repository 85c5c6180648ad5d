package mqttpkt

import (
	"bytes"
	"io"
)

// PINGRESP carries nothing beyond the fixed header (MQTT v3.1.1 §3.13):
// the server's only reply to a PINGREQ.
type PINGRESP struct {
	*FixedHeader `json:"FixedHeader,omitempty"`
}

func (pkt *PINGRESP) Kind() byte {
	return 0xD
}
func (pkt *PINGRESP) Pack(w io.Writer) error {
	return pkt.FixedHeader.Pack(w)
}
func (pkt *PINGRESP) Unpack(_ *bytes.Buffer) error {
	return nil
}
