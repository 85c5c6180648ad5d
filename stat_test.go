package mqttws

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewStatsRegister(t *testing.T) {
	s := newStats("test-client")
	reg := prometheus.NewRegistry()
	if err := s.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestNewStatsIncrement(t *testing.T) {
	s := newStats("test-client-2")
	s.connacks.Inc()
	s.pubacksIn.Inc()
	s.messagesIn.Inc()
	s.publishes.Inc()
	s.pings.Inc()
	s.tlsBytesIn.Add(128)
	s.tlsBytesOut.Add(64)
	s.Connected.Set(1)
	s.Connected.Set(0)
	// These must not panic; values aren't asserted since the counters
	// aren't exported for direct reading without a registry scrape.
}

func TestNewStatsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newStats("dup")
	b := newStats("dup")
	if err := a.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := b.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail, same const label")
	}
}
