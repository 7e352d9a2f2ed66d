package dircomm

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/dir/sim"
	"github.com/w1xm/dir_interface/dircomm/internal/status"
	"github.com/w1xm/dir_interface/dircomm/simulator"
)

type NoopCloser struct {
	io.Reader
	write bytes.Buffer
}

func (nc *NoopCloser) Write(p []byte) (n int, err error) {
	return nc.write.Write(p)
}

func (nc *NoopCloser) Close() error {
	return nil
}

func loaded(fn func(s *status.Status)) status.Status {
	s := status.Status{Beamwidth: 90, Orientation: 0, X: 10, Y: 0}
	fn(&s)
	return s
}

func TestParsing(t *testing.T) {
	for _, test := range []struct {
		input  string
		status status.Status
	}{
		{"BW120", loaded(func(s *status.Status) { s.Beamwidth = 120 })},
		{"OR270", loaded(func(s *status.Status) { s.Orientation = 270 })},
		{"XC42 YC-7", loaded(func(s *status.Status) { s.X, s.Y = 42, -7 })},
		{"VEsim", loaded(func(s *status.Status) { s.Version = "sim" })},
		{"BW10 BW20\nBW30", loaded(func(s *status.Status) { s.Beamwidth = 30 })},
		{"BWx ZZ1 bw OR5", loaded(func(s *status.Status) { s.Orientation = 5 })},
	} {
		t.Run(test.input, func(t *testing.T) {
			ctx := context.Background()
			conn := &NoopCloser{
				Reader: strings.NewReader(test.input),
			}
			var got []dir.Status
			d := newDevice(func(s dir.Status) {
				got = append(got, s)
			})
			d.conn = conn
			if err := d.watch(ctx); err != io.EOF {
				t.Errorf("watch failed: got %v, want EOF", err)
			}
			if diff := cmp.Diff(d.status, test.status); diff != "" {
				t.Errorf("unexpected status: got(-)/want(+):\n%s", diff)
			}
			if test.status.Dir() != dir.Snapshot(newDevice(nil)) {
				if len(got) == 0 || got[len(got)-1] != test.status.Dir() {
					t.Errorf("last callback = %+v, want %+v", got, test.status.Dir())
				}
			}
			if !strings.HasPrefix(conn.write.String(), "BW\nOR\nXC\nYC\nVE\n") {
				t.Errorf("unexpected poll: %q", conn.write.String())
			}
		})
	}
}

func TestSetWithoutConnection(t *testing.T) {
	d := newDevice(nil)
	if diff := cmp.Diff(dir.Snapshot(d), dir.Status{Beamwidth: 90, Orientation: 0, X: 10, Y: 0}); diff != "" {
		t.Errorf("before Init: got(-)/want(+):\n%s", diff)
	}
	d.Init()
	d.SetXCoordinate(42)
	d.SetYCoordinate(-7)
	if diff := cmp.Diff(dir.Snapshot(d), dir.Status{Beamwidth: 60, Orientation: 1, X: 42, Y: -7}); diff != "" {
		t.Errorf("after sets: got(-)/want(+):\n%s", diff)
	}
}

func TestSetWrites(t *testing.T) {
	conn := &NoopCloser{Reader: strings.NewReader("")}
	d := newDevice(nil)
	d.conn = conn
	d.Init()
	d.SetBeamwidth(120)
	d.SetOrientation(270)
	d.SetXCoordinate(42)
	d.SetYCoordinate(-7)
	if got, want := conn.write.String(), "IN\nBW120\nOR270\nXC42\nYC-7\n"; got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
}

func TestStaleReportAfterSet(t *testing.T) {
	d := newDevice(nil)
	d.SetBeamwidth(120)
	for _, test := range []struct {
		input string
		want  int
	}{
		// Sent by the controller before it saw BW120.
		{"BW90", 120},
		{"BW120", 120},
		// The set is confirmed; later changes are the controller's own.
		{"BW90", 90},
	} {
		if err := d.parseInput(test.input); err != nil {
			t.Fatal(err)
		}
		if got := d.Beamwidth(); got != test.want {
			t.Errorf("Beamwidth() after %q = %d, want %d", test.input, got, test.want)
		}
	}

	d.SetOrientation(270)
	if err := d.parseInput("OR45"); err != nil {
		t.Fatal(err)
	}
	if got := d.Orientation(); got != 45 {
		t.Errorf("Orientation() after OR45 = %d, want 45", got)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSimulatorRoundTrip(t *testing.T) {
	st := dir.Locked(sim.New())
	s, conn := simulator.New(st)
	d := newDevice(nil)
	d.conn = conn

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	simDone := make(chan error, 1)
	watchDone := make(chan error, 1)
	go func() { simDone <- s.Run(ctx) }()
	go func() { watchDone <- d.watch(ctx) }()

	waitFor(t, "version", func() bool { return d.Version() == simulator.Version })

	d.Init()
	d.SetBeamwidth(120)
	waitFor(t, "simulated beamwidth", func() bool { return st.Beamwidth() == 120 })
	if got := st.Orientation(); got != 1 {
		t.Errorf("simulated orientation = %d, want 1 after init", got)
	}

	st.SetOrientation(270)
	waitFor(t, "reported orientation", func() bool { return d.Orientation() == 270 })

	cancel()
	<-simDone
	<-watchDone
}
