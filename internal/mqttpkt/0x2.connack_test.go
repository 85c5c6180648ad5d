package mqttpkt

import (
	"bytes"
	"testing"
)

func TestCONNACK_Kind(t *testing.T) {
	connack := &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02}}
	if connack.Kind() != 0x02 {
		t.Errorf("CONNACK.Kind() = %d, want 0x02", connack.Kind())
	}
}

func TestCONNACK_String(t *testing.T) {
	testCases := []struct {
		name     string
		connack  *CONNACK
		expected string
	}{
		{
			name:     "Accepted",
			connack:  &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02}, ConnectReturnCode: ReasonCode{Code: 0x00}},
			expected: "[0x2]ConnectReturnCode=0",
		},
		{
			name:     "Refused",
			connack:  &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02}, ConnectReturnCode: ReasonCode{Code: 0x05}},
			expected: "[0x2]ConnectReturnCode=5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := tc.connack.String(); result != tc.expected {
				t.Errorf("String() = %s, want %s", result, tc.expected)
			}
		})
	}
}

func TestCONNACK_Pack(t *testing.T) {
	testCases := []struct {
		name     string
		connack  *CONNACK
		expected []byte
	}{
		{
			name: "Accepted",
			connack: &CONNACK{
				FixedHeader:       &FixedHeader{Version: VERSION311, Kind: 0x02},
				SessionPresent:    0,
				ConnectReturnCode: ReasonCode{Code: 0x00},
			},
			expected: []byte{0x20, 0x02, 0x00, 0x00},
		},
		{
			name: "RefusedBadProtocol",
			connack: &CONNACK{
				FixedHeader:       &FixedHeader{Version: VERSION311, Kind: 0x02},
				SessionPresent:    0,
				ConnectReturnCode: ReasonCode{Code: 0x01},
			},
			expected: []byte{0x20, 0x02, 0x00, 0x01},
		},
		{
			name: "SessionPresent",
			connack: &CONNACK{
				FixedHeader:       &FixedHeader{Version: VERSION311, Kind: 0x02},
				SessionPresent:    1,
				ConnectReturnCode: ReasonCode{Code: 0x00},
			},
			expected: []byte{0x20, 0x02, 0x01, 0x00},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.connack.Pack(&buf); err != nil {
				t.Fatalf("Pack() failed: %v", err)
			}
			if result := buf.Bytes(); !bytes.Equal(result, tc.expected) {
				t.Errorf("Pack() = %#v, want %#v", result, tc.expected)
			}
		})
	}
}

func TestCONNACK_Unpack(t *testing.T) {
	testCases := []struct {
		name           string
		data           []byte
		sessionPresent uint8
		returnCode     uint8
	}{
		{name: "Accepted", data: []byte{0x00, 0x00}, sessionPresent: 0, returnCode: 0x00},
		{name: "Refused", data: []byte{0x00, 0x05}, sessionPresent: 0, returnCode: 0x05},
		{name: "SessionPresent", data: []byte{0x01, 0x00}, sessionPresent: 1, returnCode: 0x00},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			connack := &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02, Version: VERSION311}}
			if err := connack.Unpack(bytes.NewBuffer(tc.data)); err != nil {
				t.Fatalf("Unpack() failed: %v", err)
			}
			if connack.SessionPresent != tc.sessionPresent {
				t.Errorf("SessionPresent = %v, want %v", connack.SessionPresent, tc.sessionPresent)
			}
			if connack.ConnectReturnCode.Code != tc.returnCode {
				t.Errorf("ConnectReturnCode = %d, want %d", connack.ConnectReturnCode.Code, tc.returnCode)
			}
		})
	}
}

func TestCONNACK_ReturnCodes(t *testing.T) {
	for _, code := range []uint8{0x00, 0x01, 0x02, 0x03, 0x04, 0x05} {
		t.Run("", func(t *testing.T) {
			connack := &CONNACK{
				FixedHeader:       &FixedHeader{Kind: 0x02, Version: VERSION311},
				ConnectReturnCode: ReasonCode{Code: code},
			}
			var buf bytes.Buffer
			if err := connack.Pack(&buf); err != nil {
				t.Errorf("Pack() failed for return code %d: %v", code, err)
			}
		})
	}
}

func TestCONNACK_RoundTrip(t *testing.T) {
	connack := &CONNACK{
		FixedHeader:       &FixedHeader{Kind: 0x02, Version: VERSION311},
		SessionPresent:    1,
		ConnectReturnCode: ReasonCode{Code: 0x01},
	}

	var buf bytes.Buffer
	if err := connack.Pack(&buf); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}

	got := &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02, Version: VERSION311}}
	if err := got.Unpack(bytes.NewBuffer(buf.Bytes()[2:])); err != nil {
		t.Fatalf("Unpack() failed: %v", err)
	}
	if got.SessionPresent != connack.SessionPresent {
		t.Errorf("SessionPresent mismatch: %v != %v", got.SessionPresent, connack.SessionPresent)
	}
	if got.ConnectReturnCode.Code != connack.ConnectReturnCode.Code {
		t.Errorf("ConnectReturnCode mismatch: %d != %d", got.ConnectReturnCode.Code, connack.ConnectReturnCode.Code)
	}
}

func BenchmarkCONNACK_Pack(b *testing.B) {
	connack := &CONNACK{
		FixedHeader:       &FixedHeader{Kind: 0x02, Version: VERSION311},
		ConnectReturnCode: ReasonCode{Code: 0x00},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = connack.Pack(&buf)
	}
}

func BenchmarkCONNACK_Unpack(b *testing.B) {
	connack := &CONNACK{
		FixedHeader:       &FixedHeader{Kind: 0x02, Version: VERSION311},
		ConnectReturnCode: ReasonCode{Code: 0x00},
	}
	var buf bytes.Buffer
	_ = connack.Pack(&buf)
	data := buf.Bytes()[2:]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		newConnack := &CONNACK{FixedHeader: &FixedHeader{Kind: 0x02, Version: VERSION311}}
		_ = newConnack.Unpack(bytes.NewBuffer(data))
	}
}
