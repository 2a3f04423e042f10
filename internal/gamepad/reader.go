// Package gamepad polls physical controllers through the SDL3 joystick API
// and exposes the first connected device as a pull-based state snapshot.
package gamepad

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

const (
	deadzone    = 0.05
	pollDelayNS = 1_000_000 // 1 kHz, matching the synthesis cadence

	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader owns the SDL joystick subsystem. It tracks hotplug events, polls
// the active (first connected) joystick, and publishes a snapshot that
// State returns to any goroutine.
type Reader struct {
	state     State
	present   bool
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID
	hasActive bool
	mu        sync.RWMutex
}

func NewReader() *Reader {
	return &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// State returns the latest snapshot and whether any gamepad is attached.
// Safe to call from any goroutine.
func (r *Reader) State() (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.present
}

// Run initializes SDL and runs the event+polling loop until ctx is
// cancelled. SDL wants its event pump on one OS thread, so Run locks the
// goroutine it runs on.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		log.Fatalf("SDL init failed: %s", sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 joystick subsystem initialized")

	// Joysticks connected before we started don't produce add events.
	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollState()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("joystick connected: %s (VID=%04X PID=%04X) mapping=%s",
		name, vendorID, productID, mapping.Name)

	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		log.Printf("active joystick: %s (ID=%d)", name, jsID)

		r.mu.Lock()
		r.state = State{Name: name}
		r.present = true
		r.mu.Unlock()
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false

	// Promote the next available joystick, if any.
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			log.Printf("active joystick switched to: %s (ID=%d)", js.name, id)

			r.mu.Lock()
			r.state = State{Name: js.name}
			r.present = true
			r.mu.Unlock()
			return
		}
	}

	r.mu.Lock()
	r.state = State{}
	r.present = false
	r.mu.Unlock()
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.mu.Lock()
	r.state = State{}
	r.present = false
	r.mu.Unlock()
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}

	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	js := info.joystick
	mapping := info.mapping
	state := State{Name: info.name}

	for _, am := range mapping.Axes {
		raw := sdl.GetJoystickAxis(js, am.Index)
		if am.IsTrigger {
			val := ApplyDeadzone(NormalizeTrigger(raw, am.RawMin, am.RawMax), deadzone)
			switch am.Target {
			case targetLT:
				state.LT = val
			case targetRT:
				state.RT = val
			}
			continue
		}

		val := NormalizeAxis(raw)
		if am.Invert {
			val = -val
		}
		val = ApplyDeadzone(val, deadzone)
		switch am.Target {
		case targetLeftX:
			state.LeftStick.X = val
		case targetLeftY:
			state.LeftStick.Y = val
		case targetRightX:
			state.RightStick.X = val
		case targetRightY:
			state.RightStick.Y = val
		}
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		pressed := sdl.GetJoystickButton(js, bm.Index)
		switch bm.Target {
		case targetA:
			state.Buttons.A = pressed
		case targetB:
			state.Buttons.B = pressed
		case targetX:
			state.Buttons.X = pressed
		case targetY:
			state.Buttons.Y = pressed
		case targetLB:
			state.Buttons.LB = pressed
		case targetRB:
			state.Buttons.RB = pressed
		case targetSelect:
			state.Buttons.Select = pressed
		case targetStart:
			state.Buttons.Start = pressed
		case targetHome:
			state.Buttons.Home = pressed
		case targetL3:
			state.LeftStick.Pressed = pressed
		case targetR3:
			state.RightStick.Pressed = pressed
		}
	}

	if mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		hat := sdl.GetJoystickHat(js, 0)
		state.Dpad.Up = hat&hatUp != 0
		state.Dpad.Right = hat&hatRight != 0
		state.Dpad.Down = hat&hatDown != 0
		state.Dpad.Left = hat&hatLeft != 0
	}

	r.mu.Lock()
	r.state = state
	r.present = true
	r.mu.Unlock()
}
