package gamepad

// Stick is one analog stick: position normalized to [-1, 1] per axis, plus
// the click button.
type Stick struct {
	X       float64
	Y       float64
	Pressed bool
}

// Buttons holds the digital face, shoulder and meta buttons.
type Buttons struct {
	A      bool
	B      bool
	X      bool
	Y      bool
	LB     bool
	RB     bool
	Select bool
	Start  bool
	Home   bool
}

// Dpad holds the four directional buttons, decoded from the hat switch.
type Dpad struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// State is one consistent snapshot of the active gamepad. Trigger values are
// normalized to [0, 1].
type State struct {
	Name       string
	Buttons    Buttons
	Dpad       Dpad
	LeftStick  Stick
	RightStick Stick
	LT         float64
	RT         float64
}
