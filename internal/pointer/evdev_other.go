//go:build !linux

package pointer

import (
	"context"
	"log"
)

// Collector is a stub on platforms without evdev. It never produces motion;
// the synthesis loop keeps running with zero pointer input.
type Collector struct {
	q *queue
}

func NewCollector() *Collector {
	return &Collector{q: newQueue()}
}

func (c *Collector) Start(ctx context.Context) error {
	log.Println("raw pointer capture is not supported on this platform; motion input will be zero")
	return nil
}

func (c *Collector) Drain() []Motion {
	return c.q.drain()
}
