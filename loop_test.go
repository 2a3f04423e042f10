package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/s7rc/pad-motion/internal/config"
	"github.com/s7rc/pad-motion/internal/dsu"
	"github.com/s7rc/pad-motion/internal/gamepad"
	"github.com/s7rc/pad-motion/internal/pointer"
	"github.com/s7rc/pad-motion/internal/synth"
)

type nullPointer struct{}

func (nullPointer) Drain() []pointer.Motion { return nil }

type nullPad struct{}

func (nullPad) State() (gamepad.State, bool) { return gamepad.State{}, false }

// countingPublisher records every published frame.
type countingPublisher struct {
	mu     sync.Mutex
	frames []dsu.ControllerData
}

func (p *countingPublisher) SendControllerData(slot uint8, data dsu.ControllerData) {
	p.mu.Lock()
	p.frames = append(p.frames, data)
	p.mu.Unlock()
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func TestRunLoopPublishesEveryIteration(t *testing.T) {
	pub := &countingPublisher{}
	s := synth.New(nullPointer{}, nullPad{}, config.NewStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLoop(ctx, s, pub, 0, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pub.count() >= 10 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

// Cancellation stops the loop after at most one more full iteration, and no
// frame is published after it returns.
func TestRunLoopStopsOnCancel(t *testing.T) {
	pub := &countingPublisher{}
	s := synth.New(nullPointer{}, nullPad{}, config.NewStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLoop(ctx, s, pub, 0, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pub.count() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	after := pub.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, pub.count(), "no frames after the loop returned")
}

// Published frame timestamps follow iteration order.
func TestRunLoopTimestampsOrdered(t *testing.T) {
	pub := &countingPublisher{}
	s := synth.New(nullPointer{}, nullPad{}, config.NewStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLoop(ctx, s, pub, 0, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pub.count() >= 20 }, time.Second, time.Millisecond)
	cancel()
	<-done

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for i := 1; i < len(pub.frames); i++ {
		assert.GreaterOrEqual(t, pub.frames[i].MotionTimestamp, pub.frames[i-1].MotionTimestamp)
	}
}
