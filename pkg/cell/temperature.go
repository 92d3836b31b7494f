package cell

import (
	"math/rand/v2"
)

// Default sampling range of cell temperatures, in °C.
const (
	DefaultMinTemperature = 25.0
	DefaultMaxTemperature = 40.0
)

// TemperatureSampler produces the synthetic temperature of a new cell.
// It is called exactly once per created cell.
type TemperatureSampler interface {
	Sample() float64
}

// UniformSampler samples uniformly in [Min, Max].
type UniformSampler struct {
	Min float64
	Max float64

	rnd *rand.Rand
}

// NewUniformSampler returns a sampler over [min, max]. A nil rnd uses the
// global source.
func NewUniformSampler(min, max float64, rnd *rand.Rand) *UniformSampler {
	if max < min {
		min, max = max, min
	}
	return &UniformSampler{Min: min, Max: max, rnd: rnd}
}

// Sample returns a temperature in [u.Min, u.Max].
func (u *UniformSampler) Sample() float64 {
	var f float64
	if u.rnd != nil {
		f = u.rnd.Float64()
	} else {
		f = rand.Float64()
	}
	return u.Min + f*(u.Max-u.Min)
}

// FixedSampler always returns the same temperature. Used by tests and by
// callers that import readings from elsewhere.
type FixedSampler float64

// Sample returns f.
func (f FixedSampler) Sample() float64 { return float64(f) }
