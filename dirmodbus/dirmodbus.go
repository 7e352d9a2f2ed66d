// Package dirmodbus drives a directional antenna controller that exposes its
// state as Modbus holding registers. Each field is a signed 32-bit value
// spread over two big-endian registers:
//
//	0-1 beamwidth
//	2-3 orientation
//	4-5 x
//	6-7 y
//	8-9 reserved
package dirmodbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/internal/modbus"
	"github.com/w1xm/dir_interface/internal/settle"
)

type field int

const (
	beamwidth field = iota
	orientation
	xCoordinate
	yCoordinate
	reserved
	numFields
)

const registersPerField = 2

func (f field) address() uint16 {
	return uint16(f) * registersPerField
}

// registers is the part of modbus.Client used here.
type registers interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Device caches values at full int width; only the register image is
// 32-bit.
type Device struct {
	regs           registers
	statusCallback dir.StatusCallback

	mu      sync.Mutex
	values  [numFields]int
	pending [numFields]settle.Field
}

var _ dir.Device = (*Device)(nil)

func newDevice(regs registers, statusCallback dir.StatusCallback) *Device {
	d := &Device{regs: regs, statusCallback: statusCallback}
	d.values[beamwidth] = dir.LoadBeamwidth
	d.values[orientation] = dir.LoadOrientation
	d.values[xCoordinate] = dir.LoadX
	d.values[yCoordinate] = dir.LoadY
	return d
}

// Connect starts polling the controller behind client.
func Connect(ctx context.Context, client *modbus.Client, statusCallback dir.StatusCallback) (*Device, error) {
	d := newDevice(client, statusCallback)
	client.Poll = d.pollOnce
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func encode(values []int32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return buf
}

func decode(buf []byte) ([]int32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("register data has odd length %d", len(buf))
	}
	values := make([]int32, len(buf)/4)
	for i := range values {
		values[i] = int32(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return values, nil
}

func (d *Device) status() dir.Status {
	return dir.Status{
		Beamwidth:   d.values[beamwidth],
		Orientation: d.values[orientation],
		X:           d.values[xCoordinate],
		Y:           d.values[yCoordinate],
	}
}

// replace swaps in new values and notifies on change.
func (d *Device) replace(fn func(values *[numFields]int)) {
	d.mu.Lock()
	old := d.status()
	fn(&d.values)
	new := d.status()
	d.mu.Unlock()
	if new != old && d.statusCallback != nil {
		d.statusCallback(new)
	}
}

func (d *Device) pollOnce() error {
	results, err := d.regs.ReadHoldingRegisters(0, uint16(numFields)*registersPerField)
	if err != nil {
		return err
	}
	values, err := decode(results)
	if err != nil {
		return err
	}
	if len(values) != int(numFields) {
		return fmt.Errorf("read %d fields, want %d", len(values), numFields)
	}
	now := time.Now()
	d.replace(func(v *[numFields]int) {
		// A register equal to the narrowed cache leaves the wider cached
		// value alone.
		for f, r := range values {
			if d.pending[f].Accept(int64(r), int64(int32(v[f])), now) {
				v[f] = int(r)
			}
		}
	})
	return nil
}

func (d *Device) write(f field, values ...int) {
	wire := make([]int32, len(values))
	for i, v := range values {
		wire[i] = int32(v)
	}
	addr := f.address()
	if _, err := d.regs.WriteMultipleRegisters(addr, uint16(len(wire))*registersPerField, encode(wire)); err != nil {
		log.Printf("writing register %d: %v", addr, err)
	}
}

func (d *Device) get(f field) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[f]
}

// store sets field f in v, remembering the old value as stale.
func (d *Device) store(v *[numFields]int, f field, value int, now time.Time) {
	if v[f] != value {
		d.pending[f].Written(int64(int32(v[f])), now)
	}
	v[f] = value
}

func (d *Device) set(f field, value int) {
	now := time.Now()
	d.replace(func(v *[numFields]int) {
		d.store(v, f, value, now)
	})
	d.write(f, value)
}

func (d *Device) Init() {
	initial := [numFields]int{
		beamwidth:   dir.InitBeamwidth,
		orientation: dir.InitOrientation,
		xCoordinate: dir.InitX,
		yCoordinate: dir.InitY,
	}
	now := time.Now()
	d.replace(func(v *[numFields]int) {
		for f := range initial {
			d.store(v, field(f), initial[f], now)
		}
	})
	d.write(beamwidth, initial[:]...)
}

func (d *Device) Beamwidth() int             { return d.get(beamwidth) }
func (d *Device) SetBeamwidth(degrees int)   { d.set(beamwidth, degrees) }
func (d *Device) Orientation() int           { return d.get(orientation) }
func (d *Device) SetOrientation(degrees int) { d.set(orientation, degrees) }
func (d *Device) XCoordinate() int           { return d.get(xCoordinate) }
func (d *Device) SetXCoordinate(x int)       { d.set(xCoordinate, x) }
func (d *Device) YCoordinate() int           { return d.get(yCoordinate) }
func (d *Device) SetYCoordinate(y int)       { d.set(yCoordinate, y) }
