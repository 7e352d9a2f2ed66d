// Package dir defines the directional antenna interface that application
// code programs against. Back-ends (the simulator in dir/sim, dircomm,
// dirmodbus) implement Device; callers never see which one they have.
package dir

// Device is a directional antenna with a beamwidth, an orientation and a
// position. Every method forwards a single read or write; values are stored
// as given, without validation, clamping or angle wrapping.
type Device interface {
	// Init resets the device to its initial state.
	Init()

	// Beamwidth and Orientation are in degrees.
	Beamwidth() int
	SetBeamwidth(degrees int)
	Orientation() int
	SetOrientation(degrees int)

	XCoordinate() int
	SetXCoordinate(x int)
	YCoordinate() int
	SetYCoordinate(y int)
}

// TickHooks is invoked by the host scheduler once per simulated step.
type TickHooks interface {
	BeforeTick()
	AfterTick()
}

type StatusCallback func(status Status)

type Status struct {
	Beamwidth   int `json:"beamwidth"`
	Orientation int `json:"orientation"`
	X           int `json:"x"`
	Y           int `json:"y"`
}

// Snapshot reads every field of d.
func Snapshot(d Device) Status {
	return Status{
		Beamwidth:   d.Beamwidth(),
		Orientation: d.Orientation(),
		X:           d.XCoordinate(),
		Y:           d.YCoordinate(),
	}
}

// Values before the first Init.
const (
	LoadBeamwidth   = 90
	LoadOrientation = 0
	LoadX           = 10
	LoadY           = 0
)

// Values after Init.
const (
	InitBeamwidth   = 60
	InitOrientation = 1
	InitX           = 0
	InitY           = 0
)
