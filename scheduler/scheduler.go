// Package scheduler is the host side of the simulation: it owns the step
// clock and calls each registered interface's tick hooks.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/w1xm/dir_interface/dir"
)

// DefaultStep is the discrete simulation step size.
const DefaultStep = 25 * time.Millisecond

type entry struct {
	name  string
	hooks dir.TickHooks
}

type Scheduler struct {
	step time.Duration

	mu         sync.Mutex
	interfaces []entry
	ticks      uint64
}

func New(step time.Duration) *Scheduler {
	if step <= 0 {
		step = DefaultStep
	}
	return &Scheduler{step: step}
}

// Register adds hooks to be called on every step. Hooks run in registration
// order.
func (s *Scheduler) Register(name string, hooks dir.TickHooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfaces = append(s.interfaces, entry{name, hooks})
}

func (s *Scheduler) Interfaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, e := range s.interfaces {
		names = append(names, e.name)
	}
	return names
}

func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Step runs one tick: every BeforeTick, then every AfterTick.
func (s *Scheduler) Step() {
	s.mu.Lock()
	interfaces := append([]entry(nil), s.interfaces...)
	s.mu.Unlock()

	for _, e := range interfaces {
		e.hooks.BeforeTick()
	}
	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()
	for _, e := range interfaces {
		e.hooks.AfterTick()
	}
}

// Run steps until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.step)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		s.Step()
	}
}
