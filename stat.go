package mqttws

import (
	"context"
	"log"
	"net/http"

	"github.com/golang-io/requests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// stats holds one Client's Prometheus collectors. It is a per-instance
// struct rather than a package-level singleton, since a process commonly
// runs several engines side by side.
type stats struct {
	clientID string

	Connected  prometheus.Gauge
	connacks   prometheus.Counter
	pubacksIn  prometheus.Counter
	messagesIn prometheus.Counter
	publishes  prometheus.Counter
	pings      prometheus.Counter

	tlsBytesIn   prometheus.Counter
	tlsBytesOut  prometheus.Counter
	wsBytesIn    prometheus.Counter
	servicePasse prometheus.Counter
}

func newStats(clientID string) *stats {
	labels := prometheus.Labels{"client_id": clientID}
	return &stats{
		clientID: clientID,
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqttws_connected", Help: "1 when the MQTT session is CONNACK-acknowledged", ConstLabels: labels,
		}),
		connacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_connacks_total", Help: "Total CONNACK packets received", ConstLabels: labels,
		}),
		pubacksIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_pubacks_received_total", Help: "Total PUBACK packets received", ConstLabels: labels,
		}),
		messagesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_messages_received_total", Help: "Total PUBLISH packets delivered to the application", ConstLabels: labels,
		}),
		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_publishes_total", Help: "Total PUBLISH packets submitted", ConstLabels: labels,
		}),
		pings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_pingreqs_total", Help: "Total PINGREQ packets submitted", ConstLabels: labels,
		}),
		tlsBytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_tls_bytes_received_total", Help: "Total bytes read off the TLS socket", ConstLabels: labels,
		}),
		tlsBytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_tls_bytes_sent_total", Help: "Total bytes written to the TLS socket", ConstLabels: labels,
		}),
		wsBytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_ws_payload_bytes_total", Help: "Total WebSocket payload bytes deframed to MQTT", ConstLabels: labels,
		}),
		servicePasse: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttws_service_passes_total", Help: "Total service routine passes run", ConstLabels: labels,
		}),
	}
}

// Register registers every collector against reg. Taking the registry as
// a parameter, rather than registering against prometheus's global
// default, lets a test or an embedding application use its own.
func (s *stats) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{
		s.Connected, s.connacks, s.pubacksIn, s.messagesIn, s.publishes,
		s.pings, s.tlsBytesIn, s.tlsBytesOut, s.wsBytesIn, s.servicePasse,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Httpd serves this client's metrics at addr, scoped to its own registry
// so multiple engines in the same process never collide on metric names.
func (c *Client) Httpd(ctx context.Context, addr string) error {
	reg := prometheus.NewRegistry()
	if err := c.metrics.Register(reg); err != nil {
		return newErr(ErrResource, "Httpd", err)
	}
	mux := requests.NewServeMux(requests.URL(addr), requests.Logf(httpdLog))
	mux.Route("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s := requests.NewServer(ctx, mux, requests.OnStart(func(s *http.Server) {
		log.Printf("mqttws: metrics http serve: %s", s.Addr)
	}))
	return s.ListenAndServe()
}

func httpdLog(ctx context.Context, stat *requests.Stat) {
	log.Printf("mqttws: %s", stat.Print())
}
