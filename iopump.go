package mqttws

import (
	"errors"

	"github.com/golang-io/mqttws/internal/ringbuf"
)

// tlsReadInto pulls as many TLS records as are immediately available into
// dst's linear insert span, stopping at WantRead/WantWrite (meaning "no
// more for now") or a fatal error.
func (c *Client) tlsReadInto(dst *ringbuf.Buffer) error {
	for {
		span := dst.LinearInsert()
		if len(span) == 0 {
			return nil // caller's buffer is full; drained on a later pass
		}
		n, status := c.tls.Read(span)
		if n > 0 {
			dst.Produced(n)
			c.metrics.tlsBytesIn.Add(float64(n))
		}
		switch status {
		case TLSOk:
			continue
		case TLSWantRead, TLSWantWrite:
			return nil
		default:
			return newErr(ErrTransport, "tlsReadInto", errors.New("tls read failed"))
		}
	}
}

// tlsDrainWrite pushes everything buffered in src out over TLS, stopping
// when the socket would block or the buffer empties. It records whether
// the stop was caused by a blocked write (c.tlsWantWrite) so the next
// pass's poll interest arms the socket's write side instead of waiting on
// read readiness that will never unblock the pending write.
func (c *Client) tlsDrainWrite(src *ringbuf.Buffer) error {
	c.tlsWantWrite = false
	for src.Len() > 0 {
		span := src.LinearRead()
		n, status := c.tls.Write(span)
		if n > 0 {
			src.Consumed(n)
			c.metrics.tlsBytesOut.Add(float64(n))
		}
		switch status {
		case TLSOk:
			if n < len(span) {
				return nil
			}
			continue
		case TLSWantWrite:
			c.tlsWantWrite = true
			return nil
		case TLSWantRead:
			return nil
		default:
			return newErr(ErrTransport, "tlsDrainWrite", errors.New("tls write failed"))
		}
	}
	return nil
}
