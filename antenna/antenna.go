// Package antenna models a node's directional antenna from the host side:
// where it points, how wide the beam is, and its gain toward a peer.
package antenna

import (
	"errors"
	"math"
	"sync"

	"github.com/w1xm/dir_interface/dir"
)

var ErrNoPatternEntry = errors.New("no pattern entry for angle")

type Position struct {
	X, Y float64
}

// Bearing returns the angle of dst as seen from src, in radians.
func Bearing(src, dst Position) float64 {
	return math.Atan2(dst.Y-src.Y, dst.X-src.X)
}

func deg2rad(x float64) float64 {
	return x * math.Pi / 180
}

func rad2deg(x float64) float64 {
	return x * 180 / math.Pi
}

// normalize wraps whole degrees into [-180, 180).
func normalize(deg int) int {
	deg %= 360
	if deg >= 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}

// Direction tracks one node's antenna. AfterTick copies the device state
// into Direction, so the host sees what the node last set.
type Direction struct {
	dev            dir.Device
	pattern        Pattern
	statusCallback dir.StatusCallback

	mu          sync.Mutex
	positionFn  func() Position
	omni        bool
	beamwidth   float64
	orientation float64
	pos         Position
	last        dir.Status
	synced      bool
}

func NewDirection(dev dir.Device, pattern Pattern, statusCallback dir.StatusCallback) *Direction {
	return &Direction{
		dev:            dev,
		pattern:        pattern,
		statusCallback: statusCallback,
	}
}

// SetPositionSource makes AfterTick push the host's idea of the node
// position into the device.
func (d *Direction) SetPositionSource(fn func() Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.positionFn = fn
}

// SetAntennaType selects an omnidirectional antenna for type 0 and a
// directional one otherwise. A change is reported through the status
// callback once the device has been synced.
func (d *Direction) SetAntennaType(t int) {
	d.mu.Lock()
	omni := t == 0
	changed := omni != d.omni && d.synced
	d.omni = omni
	status := d.last
	d.mu.Unlock()

	if changed && d.statusCallback != nil {
		d.statusCallback(status)
	}
}

func (d *Direction) Omni() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.omni
}

// Orientation is in degrees, or -1 for an omnidirectional antenna.
func (d *Direction) Orientation() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orientationLocked()
}

func (d *Direction) orientationLocked() float64 {
	if d.omni {
		return -1
	}
	return d.orientation
}

func (d *Direction) Beamwidth() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.beamwidth
}

func (d *Direction) Position() Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

func (d *Direction) BeforeTick() {}

func (d *Direction) AfterTick() {
	d.mu.Lock()
	if d.positionFn != nil {
		p := d.positionFn()
		d.dev.SetXCoordinate(int(p.X))
		d.dev.SetYCoordinate(int(p.Y))
	}
	status := dir.Snapshot(d.dev)
	d.beamwidth = float64(status.Beamwidth)
	d.orientation = float64(status.Orientation)
	d.pos = Position{float64(status.X), float64(status.Y)}
	changed := !d.synced || status != d.last
	d.last = status
	d.synced = true
	d.mu.Unlock()

	if changed && d.statusCallback != nil {
		d.statusCallback(status)
	}
}

// Angle returns the bearing of dst relative to where the antenna points, in
// radians.
func (d *Direction) Angle(dst Position) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Bearing(d.pos, dst) - deg2rad(d.orientationLocked())
}

// Gain returns the linear antenna gain toward dst. An omnidirectional antenna
// has unit gain.
func (d *Direction) Gain(dst Position) (float64, error) {
	if d.Omni() {
		return 1, nil
	}
	deg := normalize(int(math.Round(rad2deg(d.Angle(dst)))))
	gain, ok := d.pattern[deg]
	if !ok {
		return 0, ErrNoPatternEntry
	}
	return gain, nil
}
