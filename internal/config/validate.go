// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Simulation.StepMs < 0 {
		return fmt.Errorf("simulation.step_ms must not be negative")
	}
	if len(cfg.Nodes) == 0 {
		return fmt.Errorf("no nodes defined")
	}

	seen := make(map[string]bool)
	for i, n := range cfg.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: id is required", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %q: duplicate id", n.ID)
		}
		seen[n.ID] = true

		switch n.Backend {
		case BackendSim:
		case BackendSerial, BackendModbusRTU:
			if n.Port == "" {
				return fmt.Errorf("node %q: backend %s requires port", n.ID, n.Backend)
			}
		case BackendTCP, BackendModbusTCP:
			if n.Address == "" {
				return fmt.Errorf("node %q: backend %s requires address", n.ID, n.Backend)
			}
		case "":
			return fmt.Errorf("node %q: backend is required", n.ID)
		default:
			return fmt.Errorf("node %q: unknown backend %q", n.ID, n.Backend)
		}

		if n.Baud < 0 {
			return fmt.Errorf("node %q: baud must not be negative", n.ID)
		}
	}
	return nil
}
