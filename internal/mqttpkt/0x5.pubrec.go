package mqttpkt

import (
	"bytes"
	"encoding/binary"
	"io"
)

// PUBREC is the first step of the QoS 2 publisher handshake
// (MQTT v3.1.1 §3.5): packet identifier only.
type PUBREC struct {
	*FixedHeader

	PacketID uint16
}

func (pkt *PUBREC) Kind() byte { return 0x5 }

func (pkt *PUBREC) Pack(w io.Writer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *PUBREC) Unpack(buf *bytes.Buffer) error {
	pkt.PacketID = binary.BigEndian.Uint16(buf.Next(2))
	return nil
}
