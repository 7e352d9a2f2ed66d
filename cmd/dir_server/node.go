package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/w1xm/dir_interface/antenna"
	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/dir/sim"
	"github.com/w1xm/dir_interface/dircomm"
	"github.com/w1xm/dir_interface/dirmodbus"
	"github.com/w1xm/dir_interface/internal/config"
	"github.com/w1xm/dir_interface/internal/modbus"
	"github.com/w1xm/dir_interface/scheduler"
)

const modbusPollInterval = 100 * time.Millisecond

type Node struct {
	ID        string
	Backend   string
	dev       dir.Device
	direction *antenna.Direction

	statusMu   sync.RWMutex
	statusCond *sync.Cond
	status     dir.Status
	// version counts status changes so watchers can tell they missed none.
	version uint64
}

func (n *Node) statusCallback(status dir.Status) {
	n.statusMu.Lock()
	defer n.statusMu.Unlock()
	n.status = status
	n.version++
	n.statusCond.Broadcast()
}

func (n *Node) Status() (dir.Status, uint64) {
	n.statusMu.RLock()
	defer n.statusMu.RUnlock()
	return n.status, n.version
}

func openDevice(ctx context.Context, cfg config.NodeConfig, sched *scheduler.Scheduler) (dir.Device, error) {
	switch cfg.Backend {
	case config.BackendSim:
		st := sim.New()
		sched.Register(cfg.ID+"/"+sim.InterfaceName, st)
		return st, nil
	case config.BackendSerial:
		return dircomm.ConnectSerial(ctx, cfg.Port, cfg.Baud, nil)
	case config.BackendTCP:
		return dircomm.ConnectTCP(ctx, cfg.Address, nil)
	case config.BackendModbusRTU, config.BackendModbusTCP:
		client := &modbus.Client{
			Port:         cfg.Port,
			BaudRate:     cfg.Baud,
			SlaveId:      cfg.SlaveID,
			PollInterval: modbusPollInterval,
		}
		if cfg.Backend == config.BackendModbusTCP {
			client.Address = cfg.Address
		}
		return dirmodbus.Connect(ctx, client, nil)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// NewNode opens the node's device and registers its antenna with sched.
func NewNode(ctx context.Context, cfg config.NodeConfig, sched *scheduler.Scheduler) (*Node, error) {
	dev, err := openDevice(ctx, cfg, sched)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", cfg.ID, err)
	}
	var pattern antenna.Pattern
	if cfg.Antenna.Pattern != "" {
		pattern, err = antenna.LoadPattern(cfg.Antenna.Pattern)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", cfg.ID, err)
		}
	}

	n := &Node{
		ID:      cfg.ID,
		Backend: cfg.Backend,
		dev:     dir.Locked(dev),
	}
	n.statusCond = sync.NewCond(n.statusMu.RLocker())
	n.direction = antenna.NewDirection(n.dev, pattern, n.statusCallback)
	n.direction.SetAntennaType(cfg.Antenna.Type)
	if p := cfg.Position; p != nil {
		pos := antenna.Position{X: p.X, Y: p.Y}
		n.direction.SetPositionSource(func() antenna.Position { return pos })
	}
	sched.Register(cfg.ID+"/direction", n.direction)
	return n, nil
}
