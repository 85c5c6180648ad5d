package mqttpkt

import (
	"bytes"
	"testing"
)

func TestSUBSCRIBE_Kind(t *testing.T) {
	subscribe := &SUBSCRIBE{FixedHeader: &FixedHeader{Kind: 0x08}}
	if subscribe.Kind() != 0x08 {
		t.Errorf("SUBSCRIBE.Kind() = %d, want 0x08", subscribe.Kind())
	}
}

func TestSUBSCRIBE_PackUnpackRoundTrip(t *testing.T) {
	subscribe := &SUBSCRIBE{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1},
		PacketID:    12345,
		Subscriptions: []Subscription{
			{TopicFilter: "test/topic1", MaximumQoS: 0},
			{TopicFilter: "test/topic2", MaximumQoS: 1},
			{TopicFilter: "test/topic3", MaximumQoS: 2},
		},
	}

	var buf bytes.Buffer
	if err := subscribe.Pack(&buf); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	result := buf.Bytes()
	if result[0] != 0x82 {
		t.Errorf("packet type and flags = %#x, want 0x82", result[0])
	}
	if result[2] != 0x30 || result[3] != 0x39 {
		t.Errorf("packet ID = %02x%02x, want 0x3039", result[2], result[3])
	}

	headerLen, total, ok := peekPacketSize(result)
	if !ok {
		t.Fatalf("peekPacketSize() failed on packed result")
	}

	got := &SUBSCRIBE{FixedHeader: &FixedHeader{Kind: 0x08, Version: VERSION311, QoS: 1}}
	if err := got.Unpack(bytes.NewBuffer(result[headerLen:total])); err != nil {
		t.Fatalf("Unpack() failed: %v", err)
	}
	if got.PacketID != subscribe.PacketID {
		t.Errorf("PacketID = %d, want %d", got.PacketID, subscribe.PacketID)
	}
	if len(got.Subscriptions) != len(subscribe.Subscriptions) {
		t.Fatalf("Subscriptions count = %d, want %d", len(got.Subscriptions), len(subscribe.Subscriptions))
	}
	for i, want := range subscribe.Subscriptions {
		if got.Subscriptions[i] != want {
			t.Errorf("Subscriptions[%d] = %+v, want %+v", i, got.Subscriptions[i], want)
		}
	}
}

func TestSUBSCRIBE_UnpackRejectsBadFlags(t *testing.T) {
	subscribe := &SUBSCRIBE{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 0}}
	if err := subscribe.Unpack(bytes.NewBuffer(nil)); err != ErrMalformedFlags {
		t.Errorf("Unpack() err = %v, want ErrMalformedFlags", err)
	}
}

func TestSUBSCRIBE_UnpackRejectsEmptySubscriptions(t *testing.T) {
	subscribe := &SUBSCRIBE{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1}}
	data := []byte{0x30, 0x39} // packet ID only, no subscriptions
	if err := subscribe.Unpack(bytes.NewBuffer(data)); err != ErrProtocolViolationNoTopic {
		t.Errorf("Unpack() err = %v, want ErrProtocolViolationNoTopic", err)
	}
}

func TestSUBSCRIBE_UnpackRejectsReservedQoS(t *testing.T) {
	subscribe := &SUBSCRIBE{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1}}
	data := []byte{
		0x30, 0x39, // packet ID
		0x00, 0x0A, 't', 'e', 's', 't', '/', 't', 'o', 'p', 'i', 'c',
		0x03, // reserved QoS value
	}
	if err := subscribe.Unpack(bytes.NewBuffer(data)); err != ErrProtocolViolationQoS {
		t.Errorf("Unpack() err = %v, want ErrProtocolViolationQoS", err)
	}
}

func TestSUBSCRIBE_PackRejectsEmptyTopic(t *testing.T) {
	subscribe := &SUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1},
		PacketID:      1,
		Subscriptions: []Subscription{{TopicFilter: "", MaximumQoS: 0}},
	}
	var buf bytes.Buffer
	if err := subscribe.Pack(&buf); err != ErrProtocolViolationNoTopic {
		t.Errorf("Pack() err = %v, want ErrProtocolViolationNoTopic", err)
	}
}

func TestSubscription_String(t *testing.T) {
	sub := &Subscription{TopicFilter: "test/topic", MaximumQoS: 1}
	if got := sub.String(); got != "test/topic@1" {
		t.Errorf("String() = %q, want %q", got, "test/topic@1")
	}
}

func TestSUBSCRIBE_WildcardTopicFilters(t *testing.T) {
	testCases := []string{"test/+/topic", "test/#", "test/+/+/#"}

	for _, topicFilter := range testCases {
		t.Run(topicFilter, func(t *testing.T) {
			subscribe := &SUBSCRIBE{
				FixedHeader:   &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1},
				PacketID:      1,
				Subscriptions: []Subscription{{TopicFilter: topicFilter, MaximumQoS: 1}},
			}
			var buf bytes.Buffer
			if err := subscribe.Pack(&buf); err != nil {
				t.Errorf("Pack() failed for wildcard topic filter %q: %v", topicFilter, err)
			}
		})
	}
}

func BenchmarkSUBSCRIBE_Pack(b *testing.B) {
	subscribe := &SUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1},
		PacketID:      12345,
		Subscriptions: []Subscription{{TopicFilter: "test/topic", MaximumQoS: 1}},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = subscribe.Pack(&buf)
	}
}

func BenchmarkSUBSCRIBE_Unpack(b *testing.B) {
	subscribe := &SUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: VERSION311, Kind: 0x08, QoS: 1},
		PacketID:      12345,
		Subscriptions: []Subscription{{TopicFilter: "test/topic", MaximumQoS: 1}},
	}
	var buf bytes.Buffer
	_ = subscribe.Pack(&buf)
	headerLen, total, _ := peekPacketSize(buf.Bytes())
	data := buf.Bytes()[headerLen:total]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		newSubscribe := &SUBSCRIBE{FixedHeader: &FixedHeader{Kind: 0x08, Version: VERSION311, QoS: 1}}
		_ = newSubscribe.Unpack(bytes.NewBuffer(data))
	}
}
