package main

import (
	"context"
	"time"

	"github.com/s7rc/pad-motion/internal/dsu"
	"github.com/s7rc/pad-motion/internal/synth"
)

// framePublisher is the transport boundary the loop hands finished frames
// to. Delivery is best effort; the next frame supersedes a lost one.
type framePublisher interface {
	SendControllerData(slot uint8, data dsu.ControllerData)
}

// runLoop synthesizes and publishes one frame per tick until ctx is
// cancelled. Cancellation is observed at the top of the loop, so the
// current iteration always completes: no frame is left half-published.
func runLoop(ctx context.Context, s *synth.Synthesizer, pub framePublisher, slot uint8, tick time.Duration) {
	for ctx.Err() == nil {
		pub.SendControllerData(slot, s.Frame())
		time.Sleep(tick)
	}
}
