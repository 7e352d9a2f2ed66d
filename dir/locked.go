package dir

import "sync"

type locked struct {
	mu sync.Mutex
	d  Device
}

// Locked returns a Device that serializes every call to d. Device
// implementations do no locking of their own; hosts that share one between
// goroutines wrap it here.
func Locked(d Device) Device {
	return &locked{d: d}
}

func (l *locked) Init() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.Init()
}

func (l *locked) Beamwidth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.Beamwidth()
}

func (l *locked) SetBeamwidth(degrees int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.SetBeamwidth(degrees)
}

func (l *locked) Orientation() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.Orientation()
}

func (l *locked) SetOrientation(degrees int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.SetOrientation(degrees)
}

func (l *locked) XCoordinate() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.XCoordinate()
}

func (l *locked) SetXCoordinate(x int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.SetXCoordinate(x)
}

func (l *locked) YCoordinate() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.YCoordinate()
}

func (l *locked) SetYCoordinate(y int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.d.SetYCoordinate(y)
}
