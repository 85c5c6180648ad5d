package mqttpkt

import (
	"bytes"
	"encoding/binary"
	"io"
)

// UNSUBSCRIBE asks the server to stop forwarding messages for one or
// more topic filters previously established with SUBSCRIBE
// (MQTT v3.1.1 §3.10). Fixed header flags must be DUP=0, QoS=1, RETAIN=0.
type UNSUBSCRIBE struct {
	*FixedHeader

	PacketID uint16

	// Subscriptions lists the topic filters to remove; it must
	// contain at least one entry, matching the filters exactly as
	// given to SUBSCRIBE.
	Subscriptions []Subscription
}

func (pkt *UNSUBSCRIBE) Kind() byte { return 0xA }

func (pkt *UNSUBSCRIBE) Pack(w io.Writer) error {
	if len(pkt.Subscriptions) == 0 {
		return ErrMalformedTopic
	}

	buf := GetBuffer()
	defer PutBuffer(buf)
	buf.Write(i2b(pkt.PacketID))
	for _, subscription := range pkt.Subscriptions {
		buf.Write(s2b(subscription.TopicFilter))
	}
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())

	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pkt *UNSUBSCRIBE) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 2 {
		return ErrMalformedPacketID
	}
	pkt.PacketID = binary.BigEndian.Uint16(buf.Next(2))

	for buf.Len() != 0 {
		topicFilter := decodeUTF8[string](buf)
		pkt.Subscriptions = append(pkt.Subscriptions, Subscription{TopicFilter: topicFilter})
	}

	if len(pkt.Subscriptions) == 0 {
		return ErrMalformedTopic
	}
	return nil
}
