package sixop

import "math"

// Globals are the performance parameters that the synth reads once per render
// buffer: they are published by the control side as a whole and the render
// side always sees a consistent set.
type Globals struct {
	Algorithm      int     // algorithm id, 1-based
	MasterVolume   float64 // 0-1
	MasterTune     float64 // cents, -150..150
	Mono           bool
	PitchBend      float64 // -1..1, scaled by PitchBendRange
	PitchBendRange float64 // semitones, 0-12
	ModWheel       float64 // 0-1
	Sustain        bool
	Portamento     bool
	PortamentoTime float64 // 0-99
}

const (
	MaxMasterTune     = 150
	MaxPitchBendRange = 12
	MaxPortamentoTime = 99
)

// DefaultGlobals returns the power-on performance settings.
func DefaultGlobals() Globals {
	return Globals{
		Algorithm:      5,
		MasterVolume:   0.7,
		PitchBendRange: 2,
		PortamentoTime: 50,
	}
}

// Clamp returns a copy of g with every field clamped to its documented range.
// NaNs are replaced by the default value of the field.
func (g Globals) Clamp() Globals {
	d := DefaultGlobals()
	g.MasterVolume = Clamp(g.MasterVolume, 0, 1, d.MasterVolume)
	g.MasterTune = Clamp(g.MasterTune, -MaxMasterTune, MaxMasterTune, d.MasterTune)
	g.PitchBend = Clamp(g.PitchBend, -1, 1, 0)
	g.PitchBendRange = Clamp(g.PitchBendRange, 0, MaxPitchBendRange, d.PitchBendRange)
	g.ModWheel = Clamp(g.ModWheel, 0, 1, 0)
	g.PortamentoTime = Clamp(g.PortamentoTime, 0, MaxPortamentoTime, d.PortamentoTime)
	return g
}

// Clamp limits v to [min, max]; a NaN becomes def.
func Clamp(v, min, max, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
