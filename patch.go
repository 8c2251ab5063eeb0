package sixop

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// NumOperators is the number of operators in a voice.
const NumOperators = 6

type (
	// Patch is the full sound definition of the synth: the algorithm, the six
	// operators with their envelopes, and optionally the LFO and the function
	// (performance) settings. A nil LFO or Function means "keep the defaults".
	Patch struct {
		Name      string                      `yaml:",omitempty" json:",omitempty"`
		Algorithm int                         `yaml:"algorithm"`
		Operators [NumOperators]OperatorPatch `yaml:"operators"`
		LFO       *LFOPatch                   `yaml:"lfo,omitempty" json:",omitempty"`
		Function  *FunctionPatch              `yaml:"function,omitempty" json:",omitempty"`
	}

	// OperatorPatch holds the patch fields of one operator. All values use the
	// DX7 parameter ranges: level, key scaling 0-99, velocity sensitivity and
	// feedback 0-7, detune in cents.
	OperatorPatch struct {
		Ratio               float64       `yaml:"ratio"`
		Fixed               bool          `yaml:"fixed,omitempty"`
		FixedFrequency      float64       `yaml:"fixedfrequency,omitempty"`
		Detune              float64       `yaml:"detune"`
		Level               float64       `yaml:"level"`
		VelocitySensitivity float64       `yaml:"velocitysensitivity,omitempty"`
		KeyScaleLevel       float64       `yaml:"keyscalelevel,omitempty"`
		KeyScaleRate        float64       `yaml:"keyscalerate,omitempty"`
		Feedback            float64       `yaml:"feedback"`
		Mute                bool          `yaml:"mute,omitempty"`
		Envelope            EnvelopePatch `yaml:"envelope"`
	}

	// EnvelopePatch holds the four rates and four levels of a DX7 style
	// envelope, 0-99 each.
	EnvelopePatch struct {
		Rates  [4]float64 `yaml:"rates,flow"`
		Levels [4]float64 `yaml:"levels,flow"`
	}

	// LFOPatch holds the settings of the global LFO.
	LFOPatch struct {
		Waveform   Waveform `yaml:"waveform"`
		Rate       float64  `yaml:"rate"`
		Delay      float64  `yaml:"delay"`
		PitchDepth float64  `yaml:"pitchdepth"`
		AmpDepth   float64  `yaml:"ampdepth"`
		KeySync    bool     `yaml:"keysync"`
	}

	// FunctionPatch holds the optional performance settings stored with a
	// preset. Nil fields fall back to DefaultGlobals.
	FunctionPatch struct {
		MasterTune     *float64 `yaml:"mastertune,omitempty" json:",omitempty"`
		Mono           *bool    `yaml:"mono,omitempty" json:",omitempty"`
		BendRange      *float64 `yaml:"bendrange,omitempty" json:",omitempty"`
		Portamento     *bool    `yaml:"portamento,omitempty" json:",omitempty"`
		PortamentoTime *float64 `yaml:"portamentotime,omitempty" json:",omitempty"`
	}

	// Waveform is the shape of the LFO.
	Waveform int
)

const (
	Triangle Waveform = iota
	SawDown
	SawUp
	Square
	Sine
	SampleHold
	NumWaveforms
)

var ErrInvalidPatch = errors.New("invalid patch")

var waveformNames = [NumWaveforms]string{"Triangle", "Saw Down", "Saw Up", "Square", "Sine", "S&H"}
var waveformKeys = [NumWaveforms]string{"triangle", "sawdown", "sawup", "square", "sine", "sampleandhold"}

func (w Waveform) String() string {
	if w < 0 || w >= NumWaveforms {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || w >= NumWaveforms {
		return nil, fmt.Errorf("unknown waveform %d", int(w))
	}
	return []byte(waveformKeys[w]), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, k := range waveformKeys {
		if s == k || s == strings.ToLower(waveformNames[i]) {
			*w = Waveform(i)
			return nil
		}
	}
	return fmt.Errorf("unknown waveform %q", s)
}

// DefaultOperator returns an operator at ratio 1 with a fast attack, full
// sustain envelope.
func DefaultOperator() OperatorPatch {
	return OperatorPatch{
		Ratio: 1,
		Level: 99,
		Envelope: EnvelopePatch{
			Rates:  [4]float64{99, 99, 99, 99},
			Levels: [4]float64{99, 99, 99, 0},
		},
	}
}

// DefaultLFO returns the power-on LFO settings.
func DefaultLFO() LFOPatch {
	return LFOPatch{Waveform: Triangle, Rate: 35, KeySync: true}
}

// DefaultPatch returns the power-on sound: an electric piano on algorithm 5.
func DefaultPatch() Patch {
	p := Patch{Name: "E.PIANO 1", Algorithm: 5}
	ratios := [NumOperators]float64{1, 1, 7, 1, 14, 1}
	levels := [NumOperators]float64{99, 85, 45, 60, 25, 70}
	for i := range p.Operators {
		p.Operators[i] = OperatorPatch{
			Ratio: ratios[i],
			Level: levels[i],
			Envelope: EnvelopePatch{
				Rates:  [4]float64{99, 85, 70, 75},
				Levels: [4]float64{99, 85, 60, 0},
			},
		}
	}
	p.Operators[5].Feedback = 3
	lfo := DefaultLFO()
	p.LFO = &lfo
	return p
}

// InitPatch returns the "Init Voice" patch: algorithm 1 with only operator 1
// audible at full level and a flat organ-like envelope.
func InitPatch() Patch {
	p := Patch{Name: "Init Voice", Algorithm: 1}
	for i := range p.Operators {
		p.Operators[i] = DefaultOperator()
		p.Operators[i].Level = 0
	}
	p.Operators[0].Level = 99
	lfo := DefaultLFO()
	p.LFO = &lfo
	p.Function = &FunctionPatch{}
	return p
}

// Validate checks that every numeric field of the patch is finite and that
// ratios and fixed frequencies are not negative. Range clamping is left to
// the synth.
func (p *Patch) Validate() error {
	for i, op := range p.Operators {
		values := []float64{op.Ratio, op.FixedFrequency, op.Detune, op.Level, op.VelocitySensitivity,
			op.KeyScaleLevel, op.KeyScaleRate, op.Feedback}
		values = append(values, op.Envelope.Rates[:]...)
		values = append(values, op.Envelope.Levels[:]...)
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("operator %d has a non-finite value: %w", i+1, ErrInvalidPatch)
			}
		}
		if op.Ratio < 0 || op.FixedFrequency < 0 {
			return fmt.Errorf("operator %d has a negative frequency: %w", i+1, ErrInvalidPatch)
		}
	}
	if p.LFO != nil && (p.LFO.Waveform < 0 || p.LFO.Waveform >= NumWaveforms) {
		return fmt.Errorf("lfo waveform %d: %w", int(p.LFO.Waveform), ErrInvalidPatch)
	}
	return nil
}

// Copy makes a deep copy of the patch.
func (p Patch) Copy() Patch {
	if p.LFO != nil {
		lfo := *p.LFO
		p.LFO = &lfo
	}
	if p.Function != nil {
		f := p.Function.Copy()
		p.Function = &f
	}
	return p
}

func (f FunctionPatch) Copy() FunctionPatch {
	ret := FunctionPatch{}
	if f.MasterTune != nil {
		v := *f.MasterTune
		ret.MasterTune = &v
	}
	if f.Mono != nil {
		v := *f.Mono
		ret.Mono = &v
	}
	if f.BendRange != nil {
		v := *f.BendRange
		ret.BendRange = &v
	}
	if f.Portamento != nil {
		v := *f.Portamento
		ret.Portamento = &v
	}
	if f.PortamentoTime != nil {
		v := *f.PortamentoTime
		ret.PortamentoTime = &v
	}
	return ret
}

// Apply returns g with the performance settings of the patch written over
// the defaults: every field that the patch leaves unset gets its
// DefaultGlobals value. Algorithm is taken from the patch.
func (p *Patch) Apply(g Globals) Globals {
	d := DefaultGlobals()
	g.Algorithm = p.Algorithm
	g.MasterTune, g.Mono, g.PitchBendRange = d.MasterTune, d.Mono, d.PitchBendRange
	g.Portamento, g.PortamentoTime = d.Portamento, d.PortamentoTime
	if f := p.Function; f != nil {
		if f.MasterTune != nil {
			g.MasterTune = *f.MasterTune
		}
		if f.Mono != nil {
			g.Mono = *f.Mono
		}
		if f.BendRange != nil {
			g.PitchBendRange = *f.BendRange
		}
		if f.Portamento != nil {
			g.Portamento = *f.Portamento
		}
		if f.PortamentoTime != nil {
			g.PortamentoTime = *f.PortamentoTime
		}
	}
	return g.Clamp()
}
