package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/w1xm/dir_interface/dir/sim"
)

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) BeforeTick() { *r.calls = append(*r.calls, r.name+".before") }
func (r recorder) AfterTick()  { *r.calls = append(*r.calls, r.name+".after") }

func TestStepOrder(t *testing.T) {
	var calls []string
	s := New(0)
	s.Register("a", recorder{"a", &calls})
	s.Register("b", recorder{"b", &calls})

	s.Step()
	want := []string{"a.before", "b.before", "a.after", "b.after"}
	if diff := cmp.Diff(calls, want); diff != "" {
		t.Errorf("unexpected hook order: got(-)/want(+):\n%s", diff)
	}
	if got := s.Ticks(); got != 1 {
		t.Errorf("Ticks() = %d, want 1", got)
	}
	if diff := cmp.Diff(s.Interfaces(), []string{"a", "b"}); diff != "" {
		t.Errorf("unexpected interfaces: got(-)/want(+):\n%s", diff)
	}
}

func TestStepLeavesSimStateAlone(t *testing.T) {
	st := sim.New()
	st.Init()
	s := New(time.Millisecond)
	s.Register(sim.InterfaceName, st)
	for i := 0; i < 10; i++ {
		s.Step()
	}
	if st.Beamwidth() != 60 || st.Orientation() != 1 || st.XCoordinate() != 0 || st.YCoordinate() != 0 {
		t.Errorf("ticks changed state: bw=%d ori=%d x=%d y=%d", st.Beamwidth(), st.Orientation(), st.XCoordinate(), st.YCoordinate())
	}
}

func TestRun(t *testing.T) {
	var calls []string
	s := New(time.Millisecond)
	s.Register("a", recorder{"a", &calls})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Run() = %v, want %v", err, context.DeadlineExceeded)
	}
	if s.Ticks() == 0 {
		t.Error("Run() did not step")
	}
}
