package mqttws

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// wakeupPipe is a self-pipe: a write from any thread makes the poll set
// immediately ready, interrupting the service thread's block in the
// readiness primitive.
type wakeupPipe struct {
	readFD, writeFD int
}

func newWakeupPipe() (*wakeupPipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("wakeup: pipe2: %w", err)
	}
	return &wakeupPipe{readFD: fds[0], writeFD: fds[1]}, nil
}

// Wake writes a single byte, non-blocking. A full pipe (meaning an
// unconsumed wake-up is already pending) is not an error: the reader will
// observe readiness either way.
func (w *wakeupPipe) Wake() {
	var b [1]byte
	_, err := unix.Write(w.writeFD, b[:])
	if err != nil && err != unix.EAGAIN {
		// Best effort: the pipe is a liveness hint, not a delivery
		// guarantee, so a write failure here is not propagated.
		_ = err
	}
}

// Drain reads and discards every pending byte so the next poll blocks
// again until a new wake-up arrives.
func (w *wakeupPipe) Drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(w.readFD, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (w *wakeupPipe) Close() error {
	_ = unix.Close(w.writeFD)
	return unix.Close(w.readFD)
}
