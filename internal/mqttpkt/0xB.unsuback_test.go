package mqttpkt

import (
	"bytes"
	"testing"
)

func TestUNSUBACK_Kind(t *testing.T) {
	unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Kind: 0xB}}
	if unsuback.Kind() != 0xB {
		t.Errorf("UNSUBACK.Kind() = %d, want 0xB", unsuback.Kind())
	}
}

func TestUNSUBACK_PackUnpackRoundTrip(t *testing.T) {
	for _, id := range []uint16{1, 12345, 65535} {
		unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0xB}, PacketID: id}

		var buf bytes.Buffer
		if err := unsuback.Pack(&buf); err != nil {
			t.Fatalf("Pack() failed: %v", err)
		}
		result := buf.Bytes()
		if result[0] != 0xB0 || result[1] != 0x02 {
			t.Errorf("fixed header = %#v, want [0xB0 0x02 ...]", result[:2])
		}

		got := &UNSUBACK{FixedHeader: &FixedHeader{Kind: 0xB, Version: VERSION311, RemainingLength: 2}}
		if err := got.Unpack(bytes.NewBuffer(result[2:])); err != nil {
			t.Fatalf("Unpack() failed: %v", err)
		}
		if got.PacketID != id {
			t.Errorf("PacketID = %d, want %d", got.PacketID, id)
		}
	}
}

func TestUNSUBACK_UnpackRejectsWrongRemainingLength(t *testing.T) {
	unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Version: VERSION311, RemainingLength: 3}}
	if err := unsuback.Unpack(bytes.NewBuffer([]byte{0x00, 0x01, 0x02})); err != ErrMalformedPacket {
		t.Errorf("Unpack() err = %v, want ErrMalformedPacket", err)
	}
}

func TestUNSUBACK_UnpackRejectsUnsupportedVersion(t *testing.T) {
	unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Version: 0x09, RemainingLength: 2}}
	if err := unsuback.Unpack(bytes.NewBuffer([]byte{0x00, 0x01})); err != ErrMalformedProtocolVer {
		t.Errorf("Unpack() err = %v, want ErrMalformedProtocolVer", err)
	}
}

func BenchmarkUNSUBACK_Pack(b *testing.B) {
	unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0xB}, PacketID: 12345}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = unsuback.Pack(&buf)
	}
}

func BenchmarkUNSUBACK_Unpack(b *testing.B) {
	unsuback := &UNSUBACK{FixedHeader: &FixedHeader{Version: VERSION311, Kind: 0xB}, PacketID: 12345}
	var buf bytes.Buffer
	_ = unsuback.Pack(&buf)
	data := buf.Bytes()[2:]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		newUnsuback := &UNSUBACK{FixedHeader: &FixedHeader{Kind: 0xB, Version: VERSION311, RemainingLength: 2}}
		_ = newUnsuback.Unpack(bytes.NewBuffer(data))
	}
}
