package mqttws

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// interest is the event mask the service routine computes fresh each
// pass: nothing accumulates across calls, so a pass that no longer needs
// to write doesn't keep polling for it.
type interest struct {
	read  bool
	write bool
}

// pollResult reports which of the two polled descriptors — the socket
// and the wake-up pipe — were ready.
type pollResult struct {
	socketReadable bool
	socketWritable bool
	pipeReadable   bool
	timedOut       bool
}

// poll blocks on the socket and the wake-up pipe's read end for up to
// timeoutMS milliseconds (negative means infinite).
func poll(socketFD, pipeFD int, want interest, timeoutMS int) (pollResult, error) {
	var events int16
	if want.read {
		events |= unix.POLLIN
	}
	if want.write {
		events |= unix.POLLOUT
	}
	if events == 0 {
		events = unix.POLLIN
	}

	fds := []unix.PollFd{
		{Fd: int32(socketFD), Events: events},
		{Fd: int32(pipeFD), Events: unix.POLLIN},
	}

	n, err := unix.Poll(fds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return pollResult{}, nil
		}
		return pollResult{}, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return pollResult{timedOut: true}, nil
	}
	return pollResult{
		socketReadable: fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0,
		socketWritable: fds[0].Revents&unix.POLLOUT != 0,
		pipeReadable:   fds[1].Revents&unix.POLLIN != 0,
	}, nil
}

// socketFD recovers the raw file descriptor backing a net.Conn (always a
// *net.TCPConn in this engine) so the poller can watch it directly
// alongside the wake-up pipe.
func socketFD(conn syscall.Conn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	var ctrlErr error
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		ctrlErr = err
	}
	return fd, ctrlErr
}
