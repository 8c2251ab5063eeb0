package synth

import (
	"math"

	"github.com/sixop/sixop"
)

// Operator is a sine oscillator whose phase can be modulated by other
// operators and by its own previous output, shaped by its envelope.
type Operator struct {
	Ratio               float64
	Fixed               bool
	FixedFrequency      float64
	Detune              float64
	Level               float64
	VelocitySensitivity float64
	KeyScaleLevel       float64
	KeyScaleRate        float64
	Feedback            float64
	Mute                bool
	Envelope            Envelope

	phase      float64
	increment  float64
	lastOutput float64
	velocity   float64
	note       int
	sampleRate float64
}

const twoPi = 2 * math.Pi

func NewOperator(sampleRate float64) Operator {
	o := Operator{sampleRate: sampleRate, Envelope: NewEnvelope(sampleRate), note: ReferenceKey}
	o.SetPatch(sixop.DefaultOperator())
	return o
}

// SetPatch replaces all patch fields, clamping each to its range.
func (o *Operator) SetPatch(p sixop.OperatorPatch) {
	o.Set(OpRatio, p.Ratio)
	o.Set(OpFixed, boolFloat(p.Fixed))
	o.Set(OpFixedFrequency, p.FixedFrequency)
	o.Set(OpDetune, p.Detune)
	o.Set(OpLevel, p.Level)
	o.Set(OpVelocitySensitivity, p.VelocitySensitivity)
	o.Set(OpKeyScaleLevel, p.KeyScaleLevel)
	o.Set(OpKeyScaleRate, p.KeyScaleRate)
	o.Set(OpFeedback, p.Feedback)
	o.Set(OpMute, boolFloat(p.Mute))
	o.Envelope.SetPatch(p.Envelope)
}

func (o *Operator) Patch() sixop.OperatorPatch {
	return sixop.OperatorPatch{
		Ratio:               o.Ratio,
		Fixed:               o.Fixed,
		FixedFrequency:      o.FixedFrequency,
		Detune:              o.Detune,
		Level:               o.Level,
		VelocitySensitivity: o.VelocitySensitivity,
		KeyScaleLevel:       o.KeyScaleLevel,
		KeyScaleRate:        o.KeyScaleRate,
		Feedback:            o.Feedback,
		Mute:                o.Mute,
		Envelope:            o.Envelope.Patch(),
	}
}

// Set changes one patch field. NaN values and unknown parameters are
// ignored; everything else is clamped.
func (o *Operator) Set(p OperatorParam, value float64) {
	if !p.Valid() {
		return
	}
	v, ok := OperatorParams[p].Clamp(value)
	if !ok {
		return
	}
	switch p {
	case OpRatio:
		o.Ratio = v
	case OpLevel:
		o.Level = v
	case OpDetune:
		o.Detune = v
	case OpFeedback:
		o.Feedback = v
	case OpVelocitySensitivity:
		o.VelocitySensitivity = v
	case OpKeyScaleLevel:
		o.KeyScaleLevel = v
	case OpKeyScaleRate:
		o.KeyScaleRate = v
	case OpFixed:
		o.Fixed = boolValue(v)
	case OpFixedFrequency:
		o.FixedFrequency = v
	case OpMute:
		o.Mute = boolValue(v)
	}
}

// Trigger starts a note: the phase restarts at zero and the envelope enters
// Stage1 with rates scaled by the key position.
func (o *Operator) Trigger(frequency, velocity float64, note int) {
	o.phase = 0
	o.lastOutput = 0
	o.velocity = velocity
	o.note = note
	o.UpdateFrequencyOnly(frequency)
	o.Envelope.Trigger(velocity, KeyScaleRateFactor(note, o.KeyScaleRate))
}

// UpdateFrequencyOnly recomputes the phase increment for a new voice
// frequency without touching the phase or the envelope.
func (o *Operator) UpdateFrequencyOnly(frequency float64) {
	f := frequency * o.Ratio
	if o.Fixed {
		f = o.FixedFrequency
	}
	f *= CentsRatio(o.Detune)
	if !(f >= minOperatorFrequency && f <= maxOperatorFrequency) || f >= o.sampleRate/2 {
		o.increment = 0
		return
	}
	o.increment = twoPi * f / o.sampleRate
}

func (o *Operator) Release() {
	o.Envelope.Release()
}

// Reset silences the operator immediately.
func (o *Operator) Reset() {
	o.phase = 0
	o.lastOutput = 0
	o.Envelope.Reset()
}

func (o *Operator) Idle() bool         { return o.Envelope.Stage() == Idle }
func (o *Operator) Increment() float64 { return o.increment }

// Process renders one sample with the given phase modulation in radians.
func (o *Operator) Process(modulation float64) float64 {
	env := o.Envelope.Process()
	if env == 0 || o.Mute {
		// silent operators keep their phase and feedback state
		return 0
	}
	vel := VelocityFactor(o.velocity, o.VelocitySensitivity)
	ksl := KeyScaleLevelFactor(o.note, o.KeyScaleLevel)
	fb := o.lastOutput * FeedbackAmount(o.Feedback)
	out := math.Sin(o.phase+modulation+fb) * env * (o.Level / 99) * vel * ksl
	o.advance()
	o.lastOutput = out
	return math.Tanh(out)
}

func (o *Operator) advance() {
	o.phase += o.increment
	if o.phase >= twoPi {
		o.phase -= twoPi
	}
}
