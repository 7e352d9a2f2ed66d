// Package dircomm talks to a directional antenna controller over a simple
// line protocol. Each word is a two-letter tag with an optional integer:
// "BW" queries the beamwidth, "BW120" sets it (or reports it, coming back).
// "IN" resets the controller.
package dircomm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tarm/serial"
	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/dircomm/internal/status"
	"github.com/w1xm/dir_interface/internal/settle"
	"golang.org/x/sync/errgroup"
)

// Device implements dir.Device for a remote controller. Reads return the
// last value the controller reported or the last value set, whichever is
// newer. A report of a value from before a recent set is taken to have
// crossed the set on the wire and is dropped.
type Device struct {
	statusCallback dir.StatusCallback

	mu      sync.Mutex
	conn    io.ReadWriteCloser
	status  status.Status
	pending map[string]*settle.Field
}

var _ dir.Device = (*Device)(nil)

var pollCommands = []string{"BW", "OR", "XC", "YC", "VE"}

const pollInterval = 1 * time.Second

type opener func(ctx context.Context) (io.ReadWriteCloser, error)

func newDevice(statusCallback dir.StatusCallback) *Device {
	return &Device{
		statusCallback: statusCallback,
		pending: map[string]*settle.Field{
			"BW": {},
			"OR": {},
			"XC": {},
			"YC": {},
		},
		status: status.Status{
			Beamwidth:   dir.LoadBeamwidth,
			Orientation: dir.LoadOrientation,
			X:           dir.LoadX,
			Y:           dir.LoadY,
		},
	}
}

func ConnectTCP(ctx context.Context, addr string, statusCallback dir.StatusCallback) (*Device, error) {
	d := newDevice(statusCallback)
	go d.reconnectLoop(ctx, addr, func(ctx context.Context) (io.ReadWriteCloser, error) {
		dialer := &net.Dialer{
			Timeout: time.Second,
		}
		return dialer.DialContext(ctx, "tcp", addr)
	})
	return d, nil
}

func ConnectSerial(ctx context.Context, port string, baud int, statusCallback dir.StatusCallback) (*Device, error) {
	d := newDevice(statusCallback)
	go d.reconnectLoop(ctx, port, func(ctx context.Context) (io.ReadWriteCloser, error) {
		c := &serial.Config{Name: port, Baud: baud}
		return serial.OpenPort(c)
	})
	return d, nil
}

func (d *Device) reconnectLoop(ctx context.Context, port string, open opener) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
		conn, err := open(ctx)
		if err != nil {
			log.Printf("opening %q: %v", port, err)
			continue
		}
		log.Printf("opened %q", port)
		d.mu.Lock()
		d.conn = conn
		d.mu.Unlock()
		if err := d.watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("watching %q: %v", port, err)
		}
		d.mu.Lock()
		d.conn = nil
		d.mu.Unlock()
	}
}

// watch reads reports until the connection ends, polling every field once
// per pollInterval. It returns io.EOF when the controller hangs up.
func (d *Device) watch(ctx context.Context) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(conn)
		scanner.Split(bufio.ScanWords)
		for scanner.Scan() {
			input := scanner.Text()
			if err := d.parseInput(input); err != nil {
				log.Printf("parsing %q: %v", input, err)
				continue
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading port: %w", err)
		}
		return io.EOF
	})
	g.Go(func() error {
		for {
			for _, cmd := range pollCommands {
				if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
					return err
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
		}
	})
	return g.Wait()
}

func (d *Device) parseInput(input string) error {
	tag, arg, err := status.Split(input)
	if err != nil {
		return err
	}
	if tag == "VE" {
		return d.update(func(s *status.Status) error {
			s.Version = arg
			return nil
		})
	}
	if fieldFor(&status.Status{}, tag) == nil {
		return fmt.Errorf("unknown report %q", tag)
	}
	var value int
	if err := status.ParseInt(&value, arg); err != nil {
		return err
	}
	now := time.Now()
	return d.update(func(s *status.Status) error {
		dest := fieldFor(s, tag)
		if d.pending[tag].Accept(int64(value), int64(*dest), now) {
			*dest = value
		}
		return nil
	})
}

// fieldFor returns the integer field of s reported under tag, or nil.
func fieldFor(s *status.Status, tag string) *int {
	switch tag {
	case "BW":
		return &s.Beamwidth
	case "OR":
		return &s.Orientation
	case "XC":
		return &s.X
	case "YC":
		return &s.Y
	}
	return nil
}

// update applies fn to the cached status and notifies on change.
func (d *Device) update(fn func(s *status.Status) error) error {
	d.mu.Lock()
	old := d.status
	err := fn(&d.status)
	new := d.status
	d.mu.Unlock()
	if new != old && d.statusCallback != nil {
		d.statusCallback(new.Dir())
	}
	return err
}

func (d *Device) send(cmd string, fields ...interface{}) {
	if len(fields) > 0 {
		cmd = fmt.Sprintf(cmd, fields...)
	}
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		log.Printf("not connected; dropping %q", cmd)
		return
	}
	if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
		log.Printf("sending %q: %v", cmd, err)
	}
}

func (d *Device) get(field func(s status.Status) int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return field(d.status)
}

// store sets the field under tag, remembering the old value as stale.
// Callers hold d.mu.
func (d *Device) store(s *status.Status, tag string, value int, now time.Time) {
	dest := fieldFor(s, tag)
	if *dest != value {
		d.pending[tag].Written(int64(*dest), now)
	}
	*dest = value
}

func (d *Device) set(tag string, value int) {
	now := time.Now()
	d.update(func(s *status.Status) error {
		d.store(s, tag, value, now)
		return nil
	})
	d.send("%s%d", tag, value)
}

// Version is the firmware version the controller reported.
func (d *Device) Version() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status.Version
}

func (d *Device) Init() {
	now := time.Now()
	d.update(func(s *status.Status) error {
		d.store(s, "BW", dir.InitBeamwidth, now)
		d.store(s, "OR", dir.InitOrientation, now)
		d.store(s, "XC", dir.InitX, now)
		d.store(s, "YC", dir.InitY, now)
		return nil
	})
	d.send("IN")
}

func (d *Device) Beamwidth() int {
	return d.get(func(s status.Status) int { return s.Beamwidth })
}

func (d *Device) SetBeamwidth(degrees int) {
	d.set("BW", degrees)
}

func (d *Device) Orientation() int {
	return d.get(func(s status.Status) int { return s.Orientation })
}

func (d *Device) SetOrientation(degrees int) {
	d.set("OR", degrees)
}

func (d *Device) XCoordinate() int {
	return d.get(func(s status.Status) int { return s.X })
}

func (d *Device) SetXCoordinate(x int) {
	d.set("XC", x)
}

func (d *Device) YCoordinate() int {
	return d.get(func(s status.Status) int { return s.Y })
}

func (d *Device) SetYCoordinate(y int) {
	d.set("YC", y)
}
