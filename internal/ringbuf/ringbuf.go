// Package ringbuf implements the fixed-capacity byte rings the engine
// plumbs between TLS, the WebSocket framer, and the MQTT session. Buffer
// addresses stay stable for the life of the ring: callers read and write
// into the slices returned by LinearInsert/LinearRead directly instead of
// copying through intermediate channels.
package ringbuf

import "fmt"

// Buffer is a single-producer single-consumer byte ring. It is not safe
// for concurrent use; every ring in this engine is owned by the service
// routine's single goroutine.
type Buffer struct {
	data  []byte
	head  int // next byte to read
	tail  int // next byte to write
	count int
}

// New allocates a ring of the given capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuf: invalid capacity %d", capacity))
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of buffered, unread bytes.
func (b *Buffer) Len() int { return b.count }

// Free returns the number of bytes that can still be inserted.
func (b *Buffer) Free() int { return len(b.data) - b.count }

// Cap returns the ring's total capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Reset empties the ring without releasing its backing array.
func (b *Buffer) Reset() {
	b.head, b.tail, b.count = 0, 0, 0
}

// LinearInsert returns the maximal contiguous writable span without
// wrap-around. It is empty only when the ring has no free contiguous
// space at the tail; callers must call Produced after writing into it.
func (b *Buffer) LinearInsert() []byte {
	if b.count == len(b.data) {
		return nil
	}
	if b.tail >= b.head {
		return b.data[b.tail:]
	}
	return b.data[b.tail:b.head]
}

// Produced advances the tail after n bytes were written into the slice
// returned by LinearInsert.
func (b *Buffer) Produced(n int) {
	if n <= 0 {
		return
	}
	b.tail = (b.tail + n) % len(b.data)
	b.count += n
}

// LinearRead returns the maximal contiguous readable span without
// wrap-around. It is empty only when the ring has no buffered bytes;
// callers must call Consumed after reading from it.
func (b *Buffer) LinearRead() []byte {
	if b.count == 0 {
		return nil
	}
	if b.head < b.tail {
		return b.data[b.head:b.tail]
	}
	return b.data[b.head:]
}

// Consumed advances the head after n bytes were read from the slice
// returned by LinearRead.
func (b *Buffer) Consumed(n int) {
	if n <= 0 {
		return
	}
	b.head = (b.head + n) % len(b.data)
	b.count -= n
}

// Write appends p to the ring, wrapping as needed. It returns the number
// of bytes actually accepted; a short write means the ring is full.
func (b *Buffer) Write(p []byte) int {
	n := 0
	for n < len(p) && b.Free() > 0 {
		dst := b.LinearInsert()
		if len(dst) == 0 {
			break
		}
		c := copy(dst, p[n:])
		b.Produced(c)
		n += c
	}
	return n
}

// Read pops up to len(p) bytes from the ring into p, wrapping as needed,
// and returns the count. Zero is a valid non-error result.
func (b *Buffer) Read(p []byte) int {
	n := 0
	for n < len(p) && b.Len() > 0 {
		src := b.LinearRead()
		if len(src) == 0 {
			break
		}
		c := copy(p[n:], src)
		b.Consumed(c)
		n += c
	}
	return n
}

// Bytes returns a copy of everything currently buffered without
// consuming it.
// Intended for tests and diagnostics, not the hot path.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.Len())
	head, tail, count := b.head, b.tail, b.count
	b.Read(out)
	b.head, b.tail, b.count = head, tail, count
	return out
}
