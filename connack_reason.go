package mqttws

import "github.com/golang-io/mqttws/internal/mqttpkt"

// connackReason resolves a v3.1.1 CONNACK return code to mqttpkt's named
// ReasonCode, falling back to the bare code when the broker returned
// something outside the six values MQTT-3.2.2-3 defines.
func connackReason(code uint8) mqttpkt.ReasonCode {
	switch code {
	case 0x01:
		return mqttpkt.Err3UnsupportedProtocolVersion
	case 0x02:
		return mqttpkt.Err3ClientIdentifierNotValid
	case 0x03:
		return mqttpkt.Err3ServerUnavailable
	case 0x04:
		return mqttpkt.ErrMalformedUsernameOrPassword
	case 0x05:
		return mqttpkt.Err3NotAuthorized
	default:
		return mqttpkt.ReasonCode{Code: code, Reason: "unknown connect return code"}
	}
}
