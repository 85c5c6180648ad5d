package mqttws

import (
	"crypto/tls"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if !strings.HasPrefix(o.ClientID, "mqttws-") {
		t.Errorf("ClientID = %q, want mqttws- prefix", o.ClientID)
	}
	if o.SendBufCap != defaultMQTTBufCap || o.RecvBufCap != defaultMQTTBufCap {
		t.Errorf("buffer caps = %d/%d, want %d", o.SendBufCap, o.RecvBufCap, defaultMQTTBufCap)
	}
	if o.TLSClientConfig == nil || o.TLSClientConfig.InsecureSkipVerify {
		t.Error("default TLS config must verify server certificates")
	}
}

func TestOptionOverrides(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		ClientID("custom-id"),
		BufferCaps(1024, 2048),
		TLSConfig(&tls.Config{InsecureSkipVerify: true}),
	} {
		opt(&o)
	}
	if o.ClientID != "custom-id" {
		t.Errorf("ClientID = %q, want custom-id", o.ClientID)
	}
	if o.SendBufCap != 1024 || o.RecvBufCap != 2048 {
		t.Errorf("buffer caps = %d/%d, want 1024/2048", o.SendBufCap, o.RecvBufCap)
	}
	if !o.TLSClientConfig.InsecureSkipVerify {
		t.Error("TLSConfig option did not take effect")
	}
}
