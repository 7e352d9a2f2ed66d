package antenna

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Pattern maps a relative angle in whole degrees, in [-180, 180), to linear
// gain.
type Pattern map[int]float64

// ParsePattern reads "degrees,gain" lines. Degrees may be fractional in the
// file; they are rounded and wrapped.
func ParsePattern(r io.Reader) (Pattern, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	p := make(Pattern)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return nil, err
		}
		deg, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing angle %q: %w", record[0], err)
		}
		gain, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing gain %q: %w", record[1], err)
		}
		p[normalize(int(math.Round(deg)))] = gain
	}
}

func LoadPattern(path string) (Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ParsePattern(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
