package mqttws

import (
	"crypto/tls"
	"log/slog"

	"github.com/golang-io/requests"
)

const (
	defaultMQTTBufCap = 3 * 1024 * 1024
	defaultWsBufCap   = 256 * 1024
	defaultKeepAlive  = 400 // seconds
)

// Options configures a Client. Its zero value plus defaultOptions is what
// New(opts...) starts from.
type Options struct {
	ClientID        string
	SendBufCap      int
	RecvBufCap      int
	WsBufCap        int
	TLSClientConfig *tls.Config
	Logger          *slog.Logger
}

// Option mutates Options during construction.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		ClientID:   "mqttws-" + requests.GenId(),
		SendBufCap: defaultMQTTBufCap,
		RecvBufCap: defaultMQTTBufCap,
		WsBufCap:   defaultWsBufCap,
		// Server certificate verification defaults on. InsecureSkipVerify
		// must be opted into explicitly via TLSConfig.
		TLSClientConfig: &tls.Config{},
	}
}

// ClientID overrides the generated client identifier.
func ClientID(id string) Option {
	return func(o *Options) { o.ClientID = id }
}

// TLSConfig overrides the TLS client configuration. Passing a config with
// InsecureSkipVerify is the explicit opt-out from the default-on
// certificate verification.
func TLSConfig(cfg *tls.Config) Option {
	return func(o *Options) { o.TLSClientConfig = cfg }
}

// BufferCaps overrides the MQTT send/receive ring capacities.
func BufferCaps(sendCap, recvCap int) Option {
	return func(o *Options) {
		o.SendBufCap = sendCap
		o.RecvBufCap = recvCap
	}
}

// Logger installs a structured logger; a nil Client.Logger discards.
func Logger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// ConnectParams bundles the per-call CONNECT parameters. It is passed to
// Client.Connect rather than threaded through functional options, since
// it varies per call (reconnects may use different credentials) where
// Options configures the Client for its lifetime.
type ConnectParams struct {
	ClientID  string
	Username  string
	Password  string
	WillTopic string
	WillMsg   []byte
	WillQoS   uint8
	WillFlag  bool
	Retain    bool
	// KeepAlive in seconds; 0 selects the default of 400s.
	KeepAlive uint16
}
