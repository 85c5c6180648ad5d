package mqttpkt

import (
	"bytes"
	"testing"
)

func TestPUBLISH_Kind(t *testing.T) {
	publish := &PUBLISH{}
	if publish.Kind() != 0x03 {
		t.Errorf("PUBLISH.Kind() = %d, want 0x03", publish.Kind())
	}
}

func TestPUBLISH_PackUnpackRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		publish *PUBLISH
	}{
		{
			name: "QoS0_NoRetain",
			publish: &PUBLISH{
				FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03},
				Message:     &Message{TopicName: "test/topic", Content: []byte("hello")},
			},
		},
		{
			name: "QoS1_Retain",
			publish: &PUBLISH{
				FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03, QoS: 1, Retain: 1},
				PacketID:    7,
				Message:     &Message{TopicName: "test/topic", Content: []byte("hello")},
			},
		},
		{
			name: "QoS2_EmptyPayload",
			publish: &PUBLISH{
				FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03, QoS: 2},
				PacketID:    1,
				Message:     &Message{TopicName: "test/topic", Content: []byte{}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.publish.Pack(&buf); err != nil {
				t.Fatalf("Pack() failed: %v", err)
			}

			result := buf.Bytes()
			if packetType := result[0] >> 4; packetType != 0x03 {
				t.Errorf("Fixed header type = %d, want 0x03", packetType)
			}

			headerLen, total, ok := peekPacketSize(result)
			if !ok || total != len(result) {
				t.Fatalf("peekPacketSize mismatch: total=%d, len=%d, ok=%v", total, len(result), ok)
			}

			got := &PUBLISH{FixedHeader: &FixedHeader{Kind: 0x03, Version: VERSION311, QoS: tc.publish.QoS}}
			if err := got.Unpack(bytes.NewBuffer(result[headerLen:])); err != nil {
				t.Fatalf("Unpack() failed: %v", err)
			}
			if got.Message.TopicName != tc.publish.Message.TopicName {
				t.Errorf("TopicName = %s, want %s", got.Message.TopicName, tc.publish.Message.TopicName)
			}
			if !bytes.Equal(got.Message.Content, tc.publish.Message.Content) {
				t.Errorf("Content = %v, want %v", got.Message.Content, tc.publish.Message.Content)
			}
			if tc.publish.QoS > 0 && got.PacketID != tc.publish.PacketID {
				t.Errorf("PacketID = %d, want %d", got.PacketID, tc.publish.PacketID)
			}
		})
	}
}

func TestPUBLISH_QoSReservedValueRejected(t *testing.T) {
	publish := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03, QoS: 3},
		Message:     &Message{TopicName: "test/topic", Content: []byte("test")},
	}
	var buf bytes.Buffer
	if err := publish.Pack(&buf); err == nil {
		t.Error("Pack() should reject QoS 3 (reserved)")
	}
}

func TestPUBLISH_TopicWildcardRejected(t *testing.T) {
	for _, topic := range []string{"a/+/b", "a/#"} {
		publish := &PUBLISH{
			FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03},
			Message:     &Message{TopicName: topic, Content: []byte("test")},
		}
		var buf bytes.Buffer
		if err := publish.Pack(&buf); err == nil {
			t.Errorf("Pack() should reject wildcard topic %q", topic)
		}
	}
}

func TestPUBLISH_RetainAndDupFlags(t *testing.T) {
	publish := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03, QoS: 1, Dup: 1, Retain: 1},
		PacketID:    3,
		Message:     &Message{TopicName: "test/topic", Content: []byte("test")},
	}
	var buf bytes.Buffer
	if err := publish.Pack(&buf); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	result := buf.Bytes()
	if result[0]&0x01 != 1 {
		t.Error("RETAIN flag not set")
	}
	if (result[0]>>3)&0x01 != 1 {
		t.Error("DUP flag not set")
	}
}

func TestPUBLISH_LargePayload(t *testing.T) {
	publish := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03},
		Message:     &Message{TopicName: "test/topic", Content: bytes.Repeat([]byte("x"), 1000)},
	}
	var buf bytes.Buffer
	if err := publish.Pack(&buf); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), publish.Message.Content) {
		t.Error("Content not found in packed data")
	}
}

func BenchmarkPUBLISH_Pack(b *testing.B) {
	publish := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03},
		Message:     &Message{TopicName: "test/topic", Content: []byte("test message")},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = publish.Pack(&buf)
	}
}

func BenchmarkPUBLISH_Unpack(b *testing.B) {
	publish := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0x03},
		Message:     &Message{TopicName: "test/topic", Content: []byte("test message")},
	}
	var buf bytes.Buffer
	_ = publish.Pack(&buf)
	data := buf.Bytes()[2:]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		newPublish := &PUBLISH{FixedHeader: &FixedHeader{Kind: 0x03, Version: VERSION311}}
		_ = newPublish.Unpack(bytes.NewBuffer(data))
	}
}
