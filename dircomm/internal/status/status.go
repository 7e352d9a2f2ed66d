package status

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/w1xm/dir_interface/dir"
)

// Status is what a device reports. The report tag is the two-letter word
// prefix used on the wire.
type Status struct {
	Beamwidth   int `report:"BW"`
	Orientation int `report:"OR"`
	X           int `report:"XC"`
	Y           int `report:"YC"`

	Version string `report:"VE"`
}

func (s Status) Dir() dir.Status {
	return dir.Status{
		Beamwidth:   s.Beamwidth,
		Orientation: s.Orientation,
		X:           s.X,
		Y:           s.Y,
	}
}

var wordRE = regexp.MustCompile(`^([A-Z]{2})(.*)$`)

// Split separates a word into its tag and argument.
func Split(word string) (tag, arg string, err error) {
	parts := wordRE.FindStringSubmatch(word)
	if parts == nil {
		return "", "", fmt.Errorf("unrecognized word %q", word)
	}
	return parts[1], parts[2], nil
}

func ParseInt(dest *int, input string) error {
	i, err := strconv.Atoi(input)
	if err != nil {
		return err
	}
	*dest = i
	return nil
}
