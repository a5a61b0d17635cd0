package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stars is a two-decimal value in [0.00, 5.00] stored as integer hundredths.
// It is used for rating scores and the aggregated provider reputation.
type Stars int

const (
	// MinStars is 0.00.
	MinStars Stars = 0
	// MaxStars is 5.00.
	MaxStars Stars = 500
)

// StarsFromFloat converts a float such as 4.5 into Stars, rounding to the
// nearest hundredth. Values outside [0, 5] return ErrOutOfRange.
func StarsFromFloat(f float64) (Stars, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrOutOfRange
	}
	s := Stars(math.Round(f * 100))
	if !s.Valid() {
		return 0, ErrOutOfRange
	}
	return s, nil
}

// ParseStars parses a decimal string with at most two fractional digits.
func ParseStars(v string) (Stars, error) {
	v = strings.TrimSpace(v)
	whole, frac, _ := strings.Cut(v, ".")
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, v)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	n, err := strconv.Atoi(whole + frac)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, v)
	}
	s := Stars(n)
	if !s.Valid() {
		return 0, ErrOutOfRange
	}
	return s, nil
}

// Valid reports whether s lies in [0.00, 5.00].
func (s Stars) Valid() bool {
	return s >= MinStars && s <= MaxStars
}

// Float64 returns s as a float, e.g. 450 -> 4.5.
func (s Stars) Float64() float64 {
	return float64(s) / 100
}

// String formats s with exactly two decimals.
func (s Stars) String() string {
	return fmt.Sprintf("%d.%02d", int(s)/100, int(s)%100)
}

// MarshalJSON encodes s as a JSON number with two decimals.
func (s Stars) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (s *Stars) UnmarshalJSON(b []byte) error {
	var raw json.Number
	if err := json.Unmarshal(b, &raw); err != nil {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		raw = json.Number(str)
	}
	f, err := raw.Float64()
	if err != nil {
		return err
	}
	v, err := StarsFromFloat(f)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MeanStars returns the arithmetic mean of scores rounded half away from zero
// to two decimal places, or 0.00 for an empty set.
func MeanStars(scores []Stars) Stars {
	if len(scores) == 0 {
		return 0
	}
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	n := int64(len(scores))
	// scores are non-negative so (2*sum + n) / (2n) rounds half up.
	return Stars((2*sum + n) / (2 * n))
}
