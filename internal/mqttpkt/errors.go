package mqttpkt

import "fmt"

// ReasonCode names a single-byte MQTT result or error code together with
// its human-readable meaning. The v3.1.1 CONNACK return codes and the
// malformed/protocol-violation codes this codec raises on decode are the
// only reason codes it needs; wire compatibility with v5's much larger
// reason-code table is out of scope.
type ReasonCode struct {
	Code   uint8
	Reason string
}

func (rc ReasonCode) Error() string {
	return fmt.Sprintf("%d:%s", rc.Code, rc.Reason)
}

// CONNACK return codes, MQTT v3.1.1 §3.2.2.3.
var (
	Err3UnsupportedProtocolVersion = ReasonCode{Code: 0x01, Reason: "unsupported protocol version"}
	Err3ClientIdentifierNotValid   = ReasonCode{Code: 0x02, Reason: "client identifier not valid"}
	Err3ServerUnavailable          = ReasonCode{Code: 0x03, Reason: "server unavailable"}
	ErrMalformedUsernameOrPassword = ReasonCode{Code: 0x04, Reason: "malformed username or password"}
	Err3NotAuthorized              = ReasonCode{Code: 0x05, Reason: "not authorized"}
)

// Decode-time error codes this codec raises itself when a peer sends a
// packet that does not parse. These use the 0x81/0x82 "malformed
// packet"/"protocol error" codes v5 reserves for the purpose, and 0x95
// "packet too large" for an unencodable remaining length; v3.1.1 has no
// equivalent wire code, so they surface only as Go errors, never on the
// wire.
var (
	ErrMalformedPacket        = ReasonCode{Code: 0x81, Reason: "malformed packet"}
	ErrMalformedProtocolName  = ReasonCode{Code: 0x81, Reason: "malformed packet: protocol name"}
	ErrMalformedProtocolVer   = ReasonCode{Code: 0x81, Reason: "malformed packet: protocol version"}
	ErrMalformedFlags         = ReasonCode{Code: 0x81, Reason: "malformed packet: flags"}
	ErrMalformedPacketID      = ReasonCode{Code: 0x81, Reason: "malformed packet: packet identifier"}
	ErrMalformedTopic         = ReasonCode{Code: 0x81, Reason: "malformed packet: topic"}
	ErrMalformedUsername      = ReasonCode{Code: 0x81, Reason: "malformed packet: username"}
	ErrMalformedPassword      = ReasonCode{Code: 0x81, Reason: "malformed packet: password"}
	ErrMalformedReasonCode    = ReasonCode{Code: 0x81, Reason: "malformed packet: reason code"}

	ErrProtocolErr             = ReasonCode{Code: 0x82, Reason: "protocol error"}
	ErrProtocolViolation       = ReasonCode{Code: 0x82, Reason: "protocol violation"}
	ErrProtocolViolationQoS    = ReasonCode{Code: 0x82, Reason: "protocol violation: qos out of range"}
	ErrProtocolViolationNoTopic = ReasonCode{Code: 0x82, Reason: "protocol violation: no topic filter"}

	ErrPacketTooLarge = ReasonCode{Code: 0x95, Reason: "packet too large"}
)
