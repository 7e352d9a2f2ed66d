// Package sim is the simulated back-end of the directional antenna: plain
// state with no hardware behind it.
package sim

import "github.com/w1xm/dir_interface/dir"

// InterfaceName is the name State registers under with the host scheduler.
const InterfaceName = "dir_interface"

// State holds one simulated node's antenna. The zero value is not the
// load-time state; use New.
type State struct {
	beamwidth   int
	orientation int
	x, y        int
	// reserved is never read or written by an accessor.
	reserved int

	beforeTick, afterTick func()
}

var (
	_ dir.Device    = (*State)(nil)
	_ dir.TickHooks = (*State)(nil)
)

// New returns a State holding the load-time values. These differ from the
// values Init sets.
func New() *State {
	return &State{
		beamwidth:   dir.LoadBeamwidth,
		orientation: dir.LoadOrientation,
		x:           dir.LoadX,
		y:           dir.LoadY,
	}
}

func (s *State) Init() {
	s.beamwidth = dir.InitBeamwidth
	s.orientation = dir.InitOrientation
	s.x = dir.InitX
	s.y = dir.InitY
	s.reserved = 0
}

func (s *State) Beamwidth() int {
	return s.beamwidth
}

func (s *State) SetBeamwidth(degrees int) {
	s.beamwidth = degrees
}

func (s *State) Orientation() int {
	return s.orientation
}

func (s *State) SetOrientation(degrees int) {
	s.orientation = degrees
}

func (s *State) XCoordinate() int {
	return s.x
}

func (s *State) SetXCoordinate(x int) {
	s.x = x
}

func (s *State) YCoordinate() int {
	return s.y
}

func (s *State) SetYCoordinate(y int) {
	s.y = y
}

func (s *State) Reserved() int {
	return s.reserved
}

// SetTickHooks attaches functions to run before and after each tick. Either
// may be nil.
func (s *State) SetTickHooks(before, after func()) {
	s.beforeTick, s.afterTick = before, after
}

func (s *State) BeforeTick() {
	if s.beforeTick != nil {
		s.beforeTick()
	}
}

func (s *State) AfterTick() {
	if s.afterTick != nil {
		s.afterTick()
	}
}
