package mqttws

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"os"
	"time"
)

// TLSStatus classifies the outcome of one non-blocking TLS step: a TLS
// operation is either complete (Ok), blocked in one direction
// (WantRead/WantWrite), or fatally broken (Fatal).
type TLSStatus int

const (
	TLSOk TLSStatus = iota
	TLSWantRead
	TLSWantWrite
	TLSFatal
)

func (s TLSStatus) String() string {
	switch s {
	case TLSOk:
		return "ok"
	case TLSWantRead:
		return "want_read"
	case TLSWantWrite:
		return "want_write"
	default:
		return "fatal"
	}
}

// tlsSession adapts crypto/tls.Conn into a non-blocking
// WANT_READ/WANT_WRITE/OK/FATAL contract. Non-blocking progress is
// emulated with a deadline of "now" on every call: a call that would
// block returns os.ErrDeadlineExceeded instead, which this adapter maps
// back to WantRead/WantWrite. The underlying net.Conn is kept alongside
// as raw; the poller takes its file descriptor from Client.conn.
type tlsSession struct {
	raw  net.Conn
	conn *tls.Conn
}

func newTLSSession(raw net.Conn, cfg *tls.Config) *tlsSession {
	return &tlsSession{raw: raw, conn: tls.Client(raw, cfg)}
}

// Handshake drives one non-blocking step of the TLS handshake. tls.Conn
// retains its handshake state across calls, so repeated WantRead/WantWrite
// results simply mean "call again once the socket is ready" — the
// handshake is never driven to completion in a single call. crypto/tls
// does not expose which direction a blocked handshake step needs, so a
// blocked handshake always classifies as WantRead; the service routine
// arms both socket directions while the handshake is outstanding (see
// service.go) so this ambiguity costs nothing.
func (t *tlsSession) Handshake() TLSStatus {
	_ = t.conn.SetDeadline(time.Now())
	err := t.conn.HandshakeContext(context.Background())
	return classify(0, err, TLSWantRead)
}

// Read performs one non-blocking TLS record read into dst.
func (t *tlsSession) Read(dst []byte) (int, TLSStatus) {
	_ = t.conn.SetReadDeadline(time.Now())
	n, err := t.conn.Read(dst)
	return n, classify(n, err, TLSWantRead)
}

// Write performs one non-blocking TLS record write from src.
func (t *tlsSession) Write(src []byte) (int, TLSStatus) {
	_ = t.conn.SetWriteDeadline(time.Now())
	n, err := t.conn.Write(src)
	return n, classify(n, err, TLSWantWrite)
}

func (t *tlsSession) Close() error { return t.conn.Close() }

// classify maps a crypto/tls result to the engine's TLSStatus sum type.
// onBlock is the status reported when the operation would have blocked
// (a deadline-exceeded timeout under the "now" deadline this adapter
// always sets): callers pass TLSWantRead for read-direction operations
// and TLSWantWrite for write-direction ones, so a blocked write is no
// longer conflated with a blocked read — the two require arming
// different poll interest bits (see service.go).
func classify(n int, err error, onBlock TLSStatus) TLSStatus {
	if err == nil {
		return TLSOk
	}
	if n > 0 {
		return TLSOk
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return onBlock
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return onBlock
	}
	return TLSFatal
}
