// Package api holds the JSON messages dir_server exchanges with its clients.
package api

import "github.com/w1xm/dir_interface/dir"

// NodeStatus is sent on /api/nodes and on every status change over a node's
// websocket.
type NodeStatus struct {
	ID          string     `json:"id"`
	Backend     string     `json:"backend"`
	Status      dir.Status `json:"status"`
	Omni        bool       `json:"omni"`
	Orientation float64    `json:"antenna_orientation"`
}

type GainResponse struct {
	Angle float64 `json:"angle"`
	Gain  float64 `json:"gain"`
}

// Command is sent by websocket clients.
type Command struct {
	Command string `json:"command"`
	Value   int    `json:"value"`
}
