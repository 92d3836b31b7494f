package cell

import (
	"fmt"
	"math"
	"strings"
)

const (
	// MinCount is the smallest number of cell slots a registration may declare.
	MinCount = 1
	// MaxCount is the largest number of cell slots a registration may declare.
	MaxCount = 20

	// ChemistryLFP is the only chemistry label with its own voltage profile.
	// Every other non-empty label falls back to DefaultProfile.
	ChemistryLFP = "lfp"
)

// Profile is the voltage triple of a chemistry, in volts.
type Profile struct {
	Nominal float64 `json:"nominal"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

var (
	// LFPProfile is used for lithium iron phosphate cells.
	LFPProfile = Profile{Nominal: 3.2, Min: 2.8, Max: 3.6}
	// DefaultProfile is used for every other label (nmc-like cells).
	DefaultProfile = Profile{Nominal: 3.6, Min: 3.2, Max: 4.0}
)

// ProfileFor returns the voltage profile of a normalized chemistry label.
// The classification is permissive: anything that is not exactly "lfp"
// gets the default profile.
func ProfileFor(chemistry string) Profile {
	if chemistry == ChemistryLFP {
		return LFPProfile
	}
	return DefaultProfile
}

// NormalizeLabel trims surrounding whitespace and lowercases a chemistry label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Key returns the identifier of the cell in 1-based slot index.
func Key(index int, chemistry string) string {
	return fmt.Sprintf("cell_%d_%s", index, chemistry)
}

// Spec is a single registered cell.
//
// Capacity is always round(Voltage*Current, 2). Temperature is sampled once
// when the cell is created and never changes afterwards.
type Spec struct {
	Key         string  `json:"key"`
	Index       int     `json:"index"`
	Chemistry   string  `json:"chemistry"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Temperature float64 `json:"temp"`
	Capacity    float64 `json:"capacity"`
	MinVoltage  float64 `json:"min_voltage"`
	MaxVoltage  float64 `json:"max_voltage"`
}

// New creates the cell for slot index with a normalized, non-empty chemistry
// label. temperature is stored as given, rounded to one decimal place.
func New(index int, chemistry string, temperature float64) *Spec {
	p := ProfileFor(chemistry)
	s := &Spec{
		Key:         Key(index, chemistry),
		Index:       index,
		Chemistry:   chemistry,
		Voltage:     p.Nominal,
		Temperature: Round(temperature, 1),
		MinVoltage:  p.Min,
		MaxVoltage:  p.Max,
	}
	s.SetCurrent(0)
	return s
}

// SetCurrent overwrites the current and recomputes the capacity.
// It does not validate the value; see ValidateCurrent.
func (s *Spec) SetCurrent(current float64) {
	s.Current = current
	s.Capacity = Capacity(s.Voltage, current)
}

// Clone returns a copy of s that shares no state with it.
func (s *Spec) Clone() *Spec {
	c := *s
	return &c
}

// Capacity is the displayed "capacity" of a cell: voltage times current,
// rounded to two decimal places.
func Capacity(voltage, current float64) float64 {
	return Round(voltage*current, 2)
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	pow := math.Pow10(places)
	r := math.Round(v*pow) / pow
	// Avoid emitting "-0" for tiny negative products.
	if r == 0 {
		return 0
	}
	return r
}
