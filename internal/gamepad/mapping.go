package gamepad

import "math"

// axisTarget names the State field a raw axis index feeds.
type axisTarget int

const (
	targetLeftX axisTarget = iota
	targetLeftY
	targetRightX
	targetRightY
	targetLT
	targetRT
)

// buttonTarget names the State field a raw button index feeds.
type buttonTarget int

const (
	targetA buttonTarget = iota
	targetB
	targetX
	targetY
	targetLB
	targetRB
	targetSelect
	targetStart
	targetHome
	targetL3
	targetR3
)

// AxisMapping maps one raw axis index to a gamepad field.
type AxisMapping struct {
	Index     int32
	Target    axisTarget
	IsTrigger bool
	Invert    bool
	// Trigger raw range. Some devices report -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping maps one raw button index to a gamepad button.
type ButtonMapping struct {
	Index  int32
	Target buttonTarget
}

// DeviceMapping is the complete axis/button layout for a device family.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := float64(raw-rawMin) / float64(rawMax-rawMin)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: []AxisMapping{
		{Index: 0, Target: targetLeftX},
		{Index: 1, Target: targetLeftY, Invert: true},
		{Index: 2, Target: targetRightX},
		{Index: 3, Target: targetRightY, Invert: true},
		{Index: 4, Target: targetLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: targetRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: targetA},
		{Index: 1, Target: targetB},
		{Index: 2, Target: targetX},
		{Index: 3, Target: targetY},
		{Index: 4, Target: targetLB},
		{Index: 5, Target: targetRB},
		{Index: 6, Target: targetSelect},
		{Index: 7, Target: targetStart},
		{Index: 8, Target: targetL3},
		{Index: 9, Target: targetR3},
		{Index: 10, Target: targetHome},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: []AxisMapping{
		{Index: 0, Target: targetLeftX},
		{Index: 1, Target: targetLeftY, Invert: true},
		{Index: 2, Target: targetRightX},
		{Index: 3, Target: targetRightY, Invert: true},
		{Index: 4, Target: targetLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: targetRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: targetA},      // Cross
		{Index: 1, Target: targetB},      // Circle
		{Index: 2, Target: targetX},      // Square
		{Index: 3, Target: targetY},      // Triangle
		{Index: 4, Target: targetSelect}, // Share / Create
		{Index: 5, Target: targetHome},   // PS button
		{Index: 6, Target: targetStart},  // Options
		{Index: 7, Target: targetL3},
		{Index: 8, Target: targetR3},
		{Index: 9, Target: targetLB},  // L1
		{Index: 10, Target: targetRB}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: []AxisMapping{
		{Index: 0, Target: targetLeftX},
		{Index: 1, Target: targetLeftY, Invert: true},
		{Index: 2, Target: targetRightX},
		{Index: 3, Target: targetRightY, Invert: true},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: targetA},
		{Index: 1, Target: targetB},
		{Index: 2, Target: targetX},
		{Index: 3, Target: targetY},
		{Index: 4, Target: targetLB},
		{Index: 5, Target: targetRB},
		{Index: 6, Target: targetSelect},
		{Index: 7, Target: targetStart},
		{Index: 8, Target: targetL3},
		{Index: 9, Target: targetR3},
		{Index: 10, Target: targetHome},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name: "generic",
	Axes: []AxisMapping{
		{Index: 0, Target: targetLeftX},
		{Index: 1, Target: targetLeftY, Invert: true},
		{Index: 2, Target: targetRightX},
		{Index: 3, Target: targetRightY, Invert: true},
		{Index: 4, Target: targetLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: targetRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: targetA},
		{Index: 1, Target: targetB},
		{Index: 2, Target: targetX},
		{Index: 3, Target: targetY},
		{Index: 4, Target: targetLB},
		{Index: 5, Target: targetRB},
		{Index: 6, Target: targetSelect},
		{Index: 7, Target: targetStart},
		{Index: 8, Target: targetL3},
		{Index: 9, Target: targetR3},
		{Index: 10, Target: targetHome},
	},
	HasHat: true,
}

type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the mapping for a device identified by vendor/product
// ID, falling back to the generic layout.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}
