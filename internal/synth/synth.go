// Package synth fuses pointer motion, gamepad state and the current tuning
// into complete controller frames.
package synth

import (
	"math"
	"time"

	"github.com/s7rc/pad-motion/internal/config"
	"github.com/s7rc/pad-motion/internal/dsu"
	"github.com/s7rc/pad-motion/internal/gamepad"
	"github.com/s7rc/pad-motion/internal/pointer"
)

// PadSource is the capability the synthesizer needs from a gamepad
// collector: the current state and whether a device is attached.
type PadSource interface {
	State() (gamepad.State, bool)
}

// triggerPressed is the analog trigger level that counts as a digital press.
const triggerPressed = 0.5

// Synthesizer builds one controller frame per call to Frame. The motion
// clock reference is captured once at construction and never resets, so
// frame timestamps are strictly non-decreasing for the process lifetime.
type Synthesizer struct {
	pointer  pointer.Source
	pads     PadSource
	tunables *config.Store
	epoch    time.Time
}

func New(ptr pointer.Source, pads PadSource, tunables *config.Store) *Synthesizer {
	return &Synthesizer{
		pointer:  ptr,
		pads:     pads,
		tunables: tunables,
		epoch:    time.Now(),
	}
}

// Frame drains pending pointer motion, snapshots the tuning once, and
// assembles a complete frame. The controller is always reported connected:
// motion stays live even with no physical gamepad attached.
func (s *Synthesizer) Frame() dsu.ControllerData {
	var dx, dy float64
	for _, m := range s.pointer.Drain() {
		dx += m.DX
		dy += m.DY
	}

	// One snapshot per iteration. Re-reading mid-frame could tear related
	// fields apart, such as the gravity axis and its magnitude.
	t := s.tunables.Snapshot()

	yaw := dx * t.Sensitivity * t.InvertX
	pitch := dy * t.Sensitivity * t.InvertY

	var ax, ay, az float64
	switch t.GravityAxis {
	case config.AxisX:
		ax = t.GravityAmount
	case config.AxisY:
		ay = t.GravityAmount
	default:
		az = t.GravityAmount
	}

	d := dsu.ControllerData{
		Connected:       true,
		MotionTimestamp: uint64(time.Since(s.epoch).Microseconds()),

		AccelerometerX: float32(ax),
		AccelerometerY: float32(ay),
		AccelerometerZ: float32(az),

		GyroscopePitch: float32(pitch),
		GyroscopeYaw:   float32(yaw),
		GyroscopeRoll:  0.0,
	}

	if pad, ok := s.pads.State(); ok {
		fillFromPad(&d, pad)
	} else {
		d.LeftStickX = StickValue(0)
		d.LeftStickY = StickValue(0)
		d.RightStickX = StickValue(0)
		d.RightStickY = StickValue(0)
	}
	return d
}

// fillFromPad maps a gamepad snapshot onto the frame's button, stick and
// analog fields. SDL joystick buttons are digital, so analog magnitudes are
// saturated 0/255 except the triggers, which keep their measured value.
func fillFromPad(d *dsu.ControllerData, pad gamepad.State) {
	d.DPadLeft = pad.Dpad.Left
	d.DPadDown = pad.Dpad.Down
	d.DPadRight = pad.Dpad.Right
	d.DPadUp = pad.Dpad.Up

	d.Cross = pad.Buttons.A
	d.Circle = pad.Buttons.B
	d.Square = pad.Buttons.X
	d.Triangle = pad.Buttons.Y

	d.L1 = pad.Buttons.LB
	d.R1 = pad.Buttons.RB
	d.L2 = pad.LT > triggerPressed
	d.R2 = pad.RT > triggerPressed

	d.Share = pad.Buttons.Select
	d.Options = pad.Buttons.Start
	d.L3 = pad.LeftStick.Pressed
	d.R3 = pad.RightStick.Pressed
	d.PS = analogValue(pad.Buttons.Home)

	d.LeftStickX = StickValue(pad.LeftStick.X)
	d.LeftStickY = StickValue(pad.LeftStick.Y)
	d.RightStickX = StickValue(pad.RightStick.X)
	d.RightStickY = StickValue(pad.RightStick.Y)

	d.AnalogDPadLeft = analogValue(pad.Dpad.Left)
	d.AnalogDPadDown = analogValue(pad.Dpad.Down)
	d.AnalogDPadRight = analogValue(pad.Dpad.Right)
	d.AnalogDPadUp = analogValue(pad.Dpad.Up)

	d.AnalogCross = analogValue(pad.Buttons.A)
	d.AnalogCircle = analogValue(pad.Buttons.B)
	d.AnalogSquare = analogValue(pad.Buttons.X)
	d.AnalogTriangle = analogValue(pad.Buttons.Y)

	d.AnalogL1 = analogValue(pad.Buttons.LB)
	d.AnalogR1 = analogValue(pad.Buttons.RB)
	d.AnalogL2 = uint8(math.Round(pad.LT * 255))
	d.AnalogR2 = uint8(math.Round(pad.RT * 255))
}

// StickValue maps a normalized stick axis in [-1, 1] to the protocol's
// unsigned range: -1 -> 0, 0 -> 127, 1 -> 254.
func StickValue(v float64) uint8 {
	return uint8(math.Round(v*127 + 127))
}

func analogValue(pressed bool) uint8 {
	if pressed {
		return 255
	}
	return 0
}
