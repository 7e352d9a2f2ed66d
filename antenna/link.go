package antenna

import (
	"fmt"
	"math"
)

const (
	// Frequency is the carrier, in Hz.
	Frequency = 2.4e9
	// RxSensitivity is the weakest signal a receiver decodes, in dBm.
	RxSensitivity = -95.0
	// InterferenceThreshold is the weakest signal that still disturbs a
	// receiver, in dBm.
	InterferenceThreshold = -100.0

	speedOfLight = 299792458.0
)

// Reception is what a transmission does to a receiver.
type Reception int

const (
	Unreachable Reception = iota
	Interfered
	Received
)

func (r Reception) String() string {
	switch r {
	case Unreachable:
		return "unreachable"
	case Interfered:
		return "interfered"
	case Received:
		return "received"
	}
	return fmt.Sprintf("Reception(%d)", int(r))
}

func (r Reception) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Classify maps a received signal strength in dBm to its effect.
func Classify(signal float64) Reception {
	switch {
	case signal >= RxSensitivity:
		return Received
	case signal >= InterferenceThreshold:
		return Interfered
	}
	return Unreachable
}

// PathLoss is the free-space loss over distance meters at Frequency, in dB.
func PathLoss(distance float64) float64 {
	return 20*math.Log10(distance) + 20*math.Log10(Frequency) + 20*math.Log10(4*math.Pi/speedOfLight)
}

type Link struct {
	Distance  float64   `json:"distance"`
	Signal    float64   `json:"signal_dbm"`
	Reception Reception `json:"reception"`
}

// LinkBudget returns what rx hears when tx transmits at ptx dBm, using each
// antenna's gain toward the other.
func LinkBudget(tx, rx *Direction, ptx float64) (Link, error) {
	txPos, rxPos := tx.Position(), rx.Position()
	gtx, err := tx.Gain(rxPos)
	if err != nil {
		return Link{}, fmt.Errorf("transmit gain: %w", err)
	}
	grx, err := rx.Gain(txPos)
	if err != nil {
		return Link{}, fmt.Errorf("receive gain: %w", err)
	}
	distance := math.Hypot(rxPos.X-txPos.X, rxPos.Y-txPos.Y)
	signal := ptx + 20*math.Log10(gtx) + 20*math.Log10(grx) - PathLoss(distance)
	return Link{
		Distance:  distance,
		Signal:    signal,
		Reception: Classify(signal),
	}, nil
}
