// Package pointer collects relative motion from raw pointer devices. The
// synthesis loop drains accumulated deltas once per iteration and
// reinterprets them as angular velocity.
package pointer

// Motion is one relative pointer movement.
type Motion struct {
	DX float64
	DY float64
}

// Source is the capability the synthesizer needs from a pointer collector:
// a bounded, non-blocking drain of everything that arrived since the last
// call, in arrival order.
type Source interface {
	Drain() []Motion
}

// queueSize bounds how many undelivered motion events a collector holds.
// At a 1 ms synthesis cadence the queue never gets near full; if a consumer
// stalls, new events are dropped rather than blocking the device readers.
const queueSize = 1024

// queue is a drop-on-full event buffer shared by the device readers and the
// drain side.
type queue struct {
	events chan Motion
}

func newQueue() *queue {
	return &queue{events: make(chan Motion, queueSize)}
}

// push enqueues m, dropping it when the buffer is full.
func (q *queue) push(m Motion) {
	select {
	case q.events <- m:
	default:
	}
}

// drain empties the buffer without blocking.
func (q *queue) drain() []Motion {
	var out []Motion
	for {
		select {
		case m := <-q.events:
			out = append(out, m)
		default:
			return out
		}
	}
}
