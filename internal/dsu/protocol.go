// Package dsu implements the server side of the cemuhook UDP protocol
// ("DSU", version 1001), the wire format motion-aware emulators such as
// Dolphin and Cemu consume controller state from.
package dsu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

const (
	// ProtocolVersion is the protocol revision this server speaks.
	ProtocolVersion uint16 = 1001

	serverMagic = "DSUS"
	clientMagic = "DSUC"

	headerSize = 16

	// MaxSlots is the number of controller slots the protocol exposes.
	MaxSlots = 4
)

// Message types, shared between requests and responses.
const (
	msgTypeVersion uint32 = 0x100000
	msgTypeInfo    uint32 = 0x100001
	msgTypeData    uint32 = 0x100002
)

// SlotState reports whether a controller slot is in use.
type SlotState uint8

const (
	SlotStateDisconnected SlotState = 0
	SlotStateReserved     SlotState = 1
	SlotStateConnected    SlotState = 2
)

// DeviceModel describes the motion capabilities of a controller.
type DeviceModel uint8

const (
	DeviceModelNone        DeviceModel = 0
	DeviceModelPartialGyro DeviceModel = 1
	DeviceModelFullGyro    DeviceModel = 2
)

// ConnectionType describes how the controller is attached.
type ConnectionType uint8

const (
	ConnectionTypeNone      ConnectionType = 0
	ConnectionTypeUSB       ConnectionType = 1
	ConnectionTypeBluetooth ConnectionType = 2
)

// BatteryStatus is the protocol's battery encoding.
type BatteryStatus uint8

const (
	BatteryStatusNotApplicable BatteryStatus = 0x00
	BatteryStatusDying         BatteryStatus = 0x01
	BatteryStatusLow           BatteryStatus = 0x02
	BatteryStatusMedium        BatteryStatus = 0x03
	BatteryStatusHigh          BatteryStatus = 0x04
	BatteryStatusFull          BatteryStatus = 0x05
	BatteryStatusCharging      BatteryStatus = 0xEE
	BatteryStatusCharged       BatteryStatus = 0xEF
)

// ControllerInfo is the shared 11-byte controller header carried by both
// info and data responses.
type ControllerInfo struct {
	Slot       uint8
	SlotState  SlotState
	Model      DeviceModel
	Connection ConnectionType
	MAC        [6]byte
	Battery    BatteryStatus
}

func (c ControllerInfo) writeTo(b []byte) {
	b[0] = c.Slot
	b[1] = uint8(c.SlotState)
	b[2] = uint8(c.Model)
	b[3] = uint8(c.Connection)
	copy(b[4:10], c.MAC[:])
	b[10] = uint8(c.Battery)
}

// TouchData is one touchpad contact.
type TouchData struct {
	Active bool
	ID     uint8
	X      uint16
	Y      uint16
}

func (t TouchData) writeTo(b []byte) {
	b[0] = boolByte(t.Active)
	b[1] = t.ID
	binary.LittleEndian.PutUint16(b[2:4], t.X)
	binary.LittleEndian.PutUint16(b[4:6], t.Y)
}

// ControllerData is one complete controller frame: digital and analog
// button state, stick positions mapped to 0..255, touch contacts, and the
// motion block (microsecond timestamp, accelerometer, gyroscope).
type ControllerData struct {
	Connected bool

	// Digital buttons.
	DPadLeft  bool
	DPadDown  bool
	DPadRight bool
	DPadUp    bool
	Options   bool
	R3        bool
	L3        bool
	Share     bool
	Triangle  bool
	Circle    bool
	Cross     bool
	Square    bool
	R1        bool
	L1        bool
	R2        bool
	L2        bool

	// PS and touchpad buttons travel as analog bytes.
	PS    uint8
	Touch uint8

	// Stick positions, 0..255 with 127 centered.
	LeftStickX  uint8
	LeftStickY  uint8
	RightStickX uint8
	RightStickY uint8

	// Analog button magnitudes, 0..255.
	AnalogDPadLeft  uint8
	AnalogDPadDown  uint8
	AnalogDPadRight uint8
	AnalogDPadUp    uint8
	AnalogTriangle  uint8
	AnalogCircle    uint8
	AnalogCross     uint8
	AnalogSquare    uint8
	AnalogR1        uint8
	AnalogL1        uint8
	AnalogR2        uint8
	AnalogL2        uint8

	FirstTouch  TouchData
	SecondTouch TouchData

	// MotionTimestamp is microseconds since the motion clock reference.
	MotionTimestamp uint64

	AccelerometerX float32
	AccelerometerY float32
	AccelerometerZ float32

	GyroscopePitch float32
	GyroscopeYaw   float32
	GyroscopeRoll  float32
}

// dataPayloadSize is the pad-data payload after the message type: 11-byte
// controller header, connected flag, packet counter, buttons, sticks,
// analog block, two touch frames and the motion block.
const dataPayloadSize = 80

func (d ControllerData) encode(info ControllerInfo, packetNum uint32) []byte {
	b := make([]byte, dataPayloadSize)
	info.writeTo(b[0:11])
	b[11] = boolByte(d.Connected)
	binary.LittleEndian.PutUint32(b[12:16], packetNum)

	var mask1 uint8
	mask1 |= maskIf(d.DPadLeft, 0x80)
	mask1 |= maskIf(d.DPadDown, 0x40)
	mask1 |= maskIf(d.DPadRight, 0x20)
	mask1 |= maskIf(d.DPadUp, 0x10)
	mask1 |= maskIf(d.Options, 0x08)
	mask1 |= maskIf(d.R3, 0x04)
	mask1 |= maskIf(d.L3, 0x02)
	mask1 |= maskIf(d.Share, 0x01)
	b[16] = mask1

	var mask2 uint8
	mask2 |= maskIf(d.Triangle, 0x80)
	mask2 |= maskIf(d.Circle, 0x40)
	mask2 |= maskIf(d.Cross, 0x20)
	mask2 |= maskIf(d.Square, 0x10)
	mask2 |= maskIf(d.R1, 0x08)
	mask2 |= maskIf(d.L1, 0x04)
	mask2 |= maskIf(d.R2, 0x02)
	mask2 |= maskIf(d.L2, 0x01)
	b[17] = mask2

	b[18] = d.PS
	b[19] = d.Touch

	b[20] = d.LeftStickX
	b[21] = d.LeftStickY
	b[22] = d.RightStickX
	b[23] = d.RightStickY

	b[24] = d.AnalogDPadLeft
	b[25] = d.AnalogDPadDown
	b[26] = d.AnalogDPadRight
	b[27] = d.AnalogDPadUp
	b[28] = d.AnalogTriangle
	b[29] = d.AnalogCircle
	b[30] = d.AnalogCross
	b[31] = d.AnalogSquare
	b[32] = d.AnalogR1
	b[33] = d.AnalogL1
	b[34] = d.AnalogR2
	b[35] = d.AnalogL2

	d.FirstTouch.writeTo(b[36:42])
	d.SecondTouch.writeTo(b[42:48])

	binary.LittleEndian.PutUint64(b[48:56], d.MotionTimestamp)

	putFloat32(b[56:60], d.AccelerometerX)
	putFloat32(b[60:64], d.AccelerometerY)
	putFloat32(b[64:68], d.AccelerometerZ)

	putFloat32(b[68:72], d.GyroscopePitch)
	putFloat32(b[72:76], d.GyroscopeYaw)
	putFloat32(b[76:80], d.GyroscopeRoll)

	return b
}

// encodePacket frames a payload with the 16-byte DSU header: magic,
// protocol version, payload length (message type included), CRC-32 computed
// with the checksum field zeroed, and the sender ID.
func encodePacket(senderID, msgType uint32, payload []byte) []byte {
	b := make([]byte, headerSize+4+len(payload))
	copy(b[0:4], serverMagic)
	binary.LittleEndian.PutUint16(b[4:6], ProtocolVersion)
	binary.LittleEndian.PutUint16(b[6:8], uint16(4+len(payload)))
	binary.LittleEndian.PutUint32(b[12:16], senderID)
	binary.LittleEndian.PutUint32(b[16:20], msgType)
	copy(b[20:], payload)
	binary.LittleEndian.PutUint32(b[8:12], crc32.ChecksumIEEE(b))
	return b
}

var (
	errBadMagic    = errors.New("dsu: not a client packet")
	errBadChecksum = errors.New("dsu: checksum mismatch")
)

// request is a validated client packet.
type request struct {
	clientID uint32
	msgType  uint32
	payload  []byte
}

// parseRequest validates the header of raw and returns the contained
// request. raw is modified in place while the checksum is verified.
func parseRequest(raw []byte) (request, error) {
	if len(raw) < headerSize+4 {
		return request{}, fmt.Errorf("dsu: packet too short (%d bytes)", len(raw))
	}
	if string(raw[0:4]) != clientMagic {
		return request{}, errBadMagic
	}
	if v := binary.LittleEndian.Uint16(raw[4:6]); v > ProtocolVersion {
		return request{}, fmt.Errorf("dsu: unsupported protocol version %d", v)
	}
	length := int(binary.LittleEndian.Uint16(raw[6:8]))
	if headerSize+length > len(raw) || length < 4 {
		return request{}, fmt.Errorf("dsu: bad payload length %d", length)
	}

	want := binary.LittleEndian.Uint32(raw[8:12])
	binary.LittleEndian.PutUint32(raw[8:12], 0)
	if crc32.ChecksumIEEE(raw[:headerSize+length]) != want {
		return request{}, errBadChecksum
	}

	return request{
		clientID: binary.LittleEndian.Uint32(raw[12:16]),
		msgType:  binary.LittleEndian.Uint32(raw[16:20]),
		payload:  raw[20 : headerSize+length],
	}, nil
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func maskIf(v bool, mask uint8) uint8 {
	if v {
		return mask
	}
	return 0
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
