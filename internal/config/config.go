// internal/config/config.go
package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Nodes      []NodeConfig     `yaml:"nodes"`
}

// ---- SERVER ----

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// ---- SIMULATION ----

type SimulationConfig struct {
	StepMs int `yaml:"step_ms"`
}

// ---- NODE ----

const (
	BackendSim       = "sim"
	BackendSerial    = "serial"
	BackendTCP       = "tcp"
	BackendModbusRTU = "modbus-rtu"
	BackendModbusTCP = "modbus-tcp"
)

type NodeConfig struct {
	ID      string `yaml:"id"`
	Backend string `yaml:"backend"`

	// serial, modbus-rtu
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	// tcp, modbus-tcp
	Address string `yaml:"address"`
	// modbus-*
	SlaveID uint8 `yaml:"slave_id"`

	// Position is pushed into the device every tick when set.
	Position *PositionConfig `yaml:"position"`
	Antenna  AntennaConfig   `yaml:"antenna"`
}

type PositionConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type AntennaConfig struct {
	Pattern string `yaml:"pattern"`
	// Type 0 is omnidirectional.
	Type int `yaml:"type"`
}

// Load reads a YAML file. It does not validate.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
