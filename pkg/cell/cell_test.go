package cell

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Profile
	}{
		{name: "lfp", label: "lfp", want: Profile{Nominal: 3.2, Min: 2.8, Max: 3.6}},
		{name: "nmc", label: "nmc", want: Profile{Nominal: 3.6, Min: 3.2, Max: 4.0}},
		{name: "unknown label", label: "lto", want: DefaultProfile},
		{name: "not normalized", label: "LFP", want: DefaultProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileFor(tt.label); got != tt.want {
				t.Errorf("ProfileFor(%q) = %+v, want %+v", tt.label, got, tt.want)
			}
		})
	}
}

func TestProfilesAreOrdered(t *testing.T) {
	for _, p := range []Profile{LFPProfile, DefaultProfile} {
		if !(p.Min <= p.Nominal && p.Nominal <= p.Max) {
			t.Errorf("profile %+v is not ordered", p)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"  LFP ": "lfp",
		"Nmc":    "nmc",
		"\t\n":   "",
		"":       "",
	}
	for in, want := range tests {
		if got := NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	c := New(2, "lfp", 31.26)

	if c.Key != "cell_2_lfp" {
		t.Errorf("Key = %q, want cell_2_lfp", c.Key)
	}
	if c.Voltage != 3.2 || c.MinVoltage != 2.8 || c.MaxVoltage != 3.6 {
		t.Errorf("unexpected voltages: %+v", c)
	}
	if c.Temperature != 31.3 {
		t.Errorf("Temperature = %v, want 31.3", c.Temperature)
	}
	if c.Current != 0 || c.Capacity != 0 {
		t.Errorf("new cell should have zero current and capacity, got %+v", c)
	}
}

func TestSetCurrent(t *testing.T) {
	tests := []struct {
		chemistry string
		current   float64
		want      float64
	}{
		{chemistry: "lfp", current: 2.0, want: 6.4},
		{chemistry: "nmc", current: 1.5, want: 5.4},
		{chemistry: "nmc", current: 0.1, want: 0.36},
		{chemistry: "lfp", current: 0.333, want: 1.07},
		{chemistry: "lfp", current: 0, want: 0},
	}
	for _, tt := range tests {
		c := New(1, tt.chemistry, 30)
		c.SetCurrent(tt.current)
		if c.Capacity != tt.want {
			t.Errorf("%s @ %vA: capacity = %v, want %v", tt.chemistry, tt.current, c.Capacity, tt.want)
		}
		// Repeating the same value changes nothing.
		before := *c
		c.SetCurrent(tt.current)
		if *c != before {
			t.Errorf("SetCurrent is not idempotent: %+v != %+v", *c, before)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := New(1, "nmc", 30)
	cp := c.Clone()
	cp.SetCurrent(5)
	if c.Current != 0 {
		t.Fatalf("clone shares state with original")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{3.6 * 1.5, 2, 5.4},
		{0.125, 2, 0.13},
		{39.96, 1, 40.0},
		{-0.001, 2, 0},
	}
	for _, tt := range tests {
		got := Round(tt.v, tt.places)
		if got != tt.want || math.Signbit(got) != math.Signbit(tt.want) {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestValidateCount(t *testing.T) {
	for _, n := range []int{1, 8, 20} {
		if err := ValidateCount(n); err != nil {
			t.Errorf("ValidateCount(%d) returned error: %v", n, err)
		}
	}
	for _, n := range []int{-1, 0, 21} {
		if err := ValidateCount(n); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("ValidateCount(%d) = %v, want ErrInvalidCount", n, err)
		}
	}
}

func TestValidateCurrent(t *testing.T) {
	for _, v := range []float64{0, 0.1, 1000} {
		if err := ValidateCurrent(v); err != nil {
			t.Errorf("ValidateCurrent(%v) returned error: %v", v, err)
		}
	}
	for _, v := range []float64{-0.1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := ValidateCurrent(v); !errors.Is(err, ErrInvalidCurrent) {
			t.Errorf("ValidateCurrent(%v) = %v, want ErrInvalidCurrent", v, err)
		}
	}
}

func TestUniformSamplerRange(t *testing.T) {
	s := NewUniformSampler(DefaultMinTemperature, DefaultMaxTemperature, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 1000; i++ {
		c := New(1, "lfp", s.Sample())
		if c.Temperature < 25.0 || c.Temperature > 40.0 {
			t.Fatalf("temperature %v out of [25, 40]", c.Temperature)
		}
		if Round(c.Temperature, 1) != c.Temperature {
			t.Fatalf("temperature %v not rounded to one decimal", c.Temperature)
		}
	}
}

func TestUniformSamplerSwapsBounds(t *testing.T) {
	s := NewUniformSampler(40, 25, nil)
	if s.Min != 25 || s.Max != 40 {
		t.Fatalf("expected bounds to be swapped, got [%v, %v]", s.Min, s.Max)
	}
}
