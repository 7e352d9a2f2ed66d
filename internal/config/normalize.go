// internal/config/normalize.go
package config

const (
	DefaultAddr    = "127.0.0.1:8502"
	DefaultStepMs  = 25
	DefaultBaud    = 9600
	DefaultSlaveID = 1
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Simulation.StepMs == 0 {
		cfg.Simulation.StepMs = DefaultStepMs
	}

	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]

		switch n.Backend {
		case BackendSerial, BackendModbusRTU:
			if n.Baud == 0 {
				n.Baud = DefaultBaud
			}
		}
		switch n.Backend {
		case BackendModbusRTU, BackendModbusTCP:
			if n.SlaveID == 0 {
				n.SlaveID = DefaultSlaveID
			}
		}
	}
}
