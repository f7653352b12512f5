package alog

import (
	"sync"
	"sync/atomic"
)

// DeliveryQueue is the hand-off point between producers and the writer.
// Any number of goroutines may Push; exactly one goroutine (the writer)
// consumes with PopAll. Push never blocks on I/O: it holds the mutex only
// long enough to append and signal.
type DeliveryQueue struct {
	mu       sync.Mutex
	buf      []Event // ring storage; len(buf) only grows
	head     int     // index of the oldest event
	count    int
	capacity int
	closed   bool
	notify   chan struct{} // capacity 1; a pending signal means "events or close to observe"
	dropped  atomic.Uint64 // events evicted by the drop-oldest policy
}

// NewDeliveryQueue creates a queue. A capacity of 0 means unbounded; otherwise
// a full queue evicts its oldest event to make room for the newest.
func NewDeliveryQueue(capacity int) *DeliveryQueue {
	if capacity < 0 {
		capacity = 0
	}
	initial := 64
	if capacity > 0 && capacity < initial {
		initial = capacity
	}
	return &DeliveryQueue{
		buf:      make([]Event, initial),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
}

// Push appends ev and wakes the writer. It returns false once the queue is closed.
func (q *DeliveryQueue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.capacity > 0 && q.count >= q.capacity {
		// Drop oldest by overwriting it and advancing head
		q.buf[q.head] = ev
		q.head = (q.head + 1) % len(q.buf)
		q.dropped.Add(1)
		q.signal()
		return true
	}

	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.count)%len(q.buf)] = ev
	q.count++
	q.signal()
	return true
}

// grow doubles the ring, capped at capacity when bounded, and unwraps it to start at index 0.
func (q *DeliveryQueue) grow() {
	size := 2 * len(q.buf)
	if q.capacity > 0 && size > q.capacity {
		size = q.capacity
	}
	buf := make([]Event, size)
	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.head])
	q.buf = buf
	q.head = 0
}

// signal must be called with mu held; notify is only closed under mu.
func (q *DeliveryQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// PopAll moves every buffered event, in FIFO order, onto dst and returns it.
// The second result reports whether the queue has been closed; once it is
// true and the returned batch is empty, no further events will arrive.
func (q *DeliveryQueue) PopAll(dst []Event) ([]Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count > 0 {
		end := q.head + q.count
		if end <= len(q.buf) {
			dst = append(dst, q.buf[q.head:end]...)
			clear(q.buf[q.head:end])
		} else {
			dst = append(dst, q.buf[q.head:]...)
			dst = append(dst, q.buf[:end-len(q.buf)]...)
			clear(q.buf[q.head:])
			clear(q.buf[:end-len(q.buf)])
		}
	}
	q.head = 0
	q.count = 0
	return dst, q.closed
}

// Ready returns the channel the writer waits on. A receive means there may be
// events to pop or the queue was closed.
func (q *DeliveryQueue) Ready() <-chan struct{} {
	return q.notify
}

// Close stops accepting new events. Events already queued stay poppable.
func (q *DeliveryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.notify)
}

// Len returns the number of buffered events.
func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Dropped returns the number of events evicted since the queue was created.
func (q *DeliveryQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// Closed reports whether Close has been called.
func (q *DeliveryQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
