// Package simulator answers the dircomm line protocol from a dir.Device,
// so a dircomm client can be exercised without hardware.
package simulator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/dircomm/internal/status"
	"golang.org/x/sync/errgroup"
)

const (
	Version = "sim"
	// Discrete simulation step size
	stepSize = 25 * time.Millisecond
)

type Simulator struct {
	conn io.ReadWriteCloser

	mu   sync.Mutex
	dev  dir.Device
	last *status.Status
}

// New returns a Simulator backed by dev and the client end of its
// connection.
func New(dev dir.Device) (*Simulator, net.Conn) {
	a, b := net.Pipe()
	return Serve(dev, a), b
}

// Serve returns a Simulator that answers on conn.
func Serve(dev dir.Device, conn io.ReadWriteCloser) *Simulator {
	return &Simulator{conn: conn, dev: dev}
}

func (s *Simulator) current() status.Status {
	st := dir.Snapshot(s.dev)
	return status.Status{
		Beamwidth:   st.Beamwidth,
		Orientation: st.Orientation,
		X:           st.X,
		Y:           st.Y,
		Version:     Version,
	}
}

func (s *Simulator) parseInput(input string) error {
	tag, arg, err := status.Split(input)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if arg == "" {
		if tag == "IN" {
			s.dev.Init()
			return nil
		}
		return s.sendStatus(nil, tag)
	}
	var v int
	if err := status.ParseInt(&v, arg); err != nil {
		return err
	}
	switch tag {
	case "BW":
		s.dev.SetBeamwidth(v)
	case "OR":
		s.dev.SetOrientation(v)
	case "XC":
		s.dev.SetXCoordinate(v)
	case "YC":
		s.dev.SetYCoordinate(v)
	default:
		return fmt.Errorf("unknown command %q %q", tag, arg)
	}
	return nil
}

// Run serves until ctx is canceled or the client hangs up, in which case it
// returns io.EOF.
func (s *Simulator) Run(ctx context.Context) error {
	defer s.conn.Close()
	t := time.NewTicker(stepSize)
	defer t.Stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return s.conn.Close()
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
			if err := s.step(); err != nil {
				return err
			}
		}
	})
	g.Go(s.reader)
	return g.Wait()
}

func (s *Simulator) reader() error {
	scanner := bufio.NewScanner(s.conn)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		input := scanner.Text()
		log.Printf("srv->sim: %s", input)
		if err := s.parseInput(input); err != nil {
			log.Printf("parsing %q: %v", input, err)
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading port: %w", err)
	}
	return io.EOF
}

// step pushes every field that changed since the last step.
func (s *Simulator) step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current()
	err := s.sendStatus(s.last, "")
	s.last = &cur
	return err
}

// sendStatus reports the fields tagged cmd, or with cmd empty every field
// that differs from old.
func (s *Simulator) sendStatus(old *status.Status, cmd string) error {
	var oldv reflect.Value
	if old != nil {
		oldv = reflect.ValueOf(*old)
	}
	cur := s.current()
	v := reflect.ValueOf(cur)
	found := false
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		tag := field.Tag.Get("report")
		if tag == "" || tag == "-" {
			continue
		}
		fv := v.Field(i)
		value := fv.Interface()
		if (cmd != "" && cmd != tag) || (cmd == "" && old != nil && reflect.DeepEqual(value, oldv.Field(i).Interface())) {
			continue
		}
		found = true
		switch fv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if err := s.send("%s%d", tag, value); err != nil {
				return err
			}
		case reflect.String:
			if err := s.send("%s%s", tag, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("don't know how to send %s: %q (value %+v)", field.Name, tag, value)
		}
	}
	if cmd != "" && !found {
		return fmt.Errorf("unknown query %q", cmd)
	}
	return nil
}

func (s *Simulator) send(cmd string, fields ...interface{}) error {
	if len(fields) > 0 {
		cmd = fmt.Sprintf(cmd, fields...)
	}
	log.Printf("sim->srv: %s", cmd)
	_, err := fmt.Fprintf(s.conn, "%s\n", cmd)
	return err
}
