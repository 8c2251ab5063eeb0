package synth

import (
	"math"

	"github.com/sixop/sixop"
)

// LFO is the single low frequency oscillator shared by all voices. Its phase
// runs in [0, 1).
type LFO struct {
	Waveform   sixop.Waveform
	Rate       float64
	Delay      float64
	PitchDepth float64
	AmpDepth   float64
	KeySync    bool

	phase      float64
	increment  float64
	delayLeft  float64
	held       float64
	half       int
	randSeed   uint32
	sampleRate float64
	value      float64
}

func NewLFO(sampleRate float64) LFO {
	l := LFO{sampleRate: sampleRate, randSeed: 1}
	l.SetPatch(sixop.DefaultLFO())
	return l
}

func (l *LFO) SetPatch(p sixop.LFOPatch) {
	l.Set(LFOWaveform, float64(p.Waveform))
	l.Set(LFORate, p.Rate)
	l.Set(LFODelay, p.Delay)
	l.Set(LFOPitchDepth, p.PitchDepth)
	l.Set(LFOAmpDepth, p.AmpDepth)
	l.Set(LFOKeySync, boolFloat(p.KeySync))
}

func (l *LFO) Patch() sixop.LFOPatch {
	return sixop.LFOPatch{
		Waveform:   l.Waveform,
		Rate:       l.Rate,
		Delay:      l.Delay,
		PitchDepth: l.PitchDepth,
		AmpDepth:   l.AmpDepth,
		KeySync:    l.KeySync,
	}
}

func (l *LFO) Set(p LFOParam, value float64) {
	if !p.Valid() {
		return
	}
	v, ok := LFOParams[p].Clamp(value)
	if !ok {
		return
	}
	switch p {
	case LFORate:
		l.Rate = v
		l.increment = LFORateHz(v) / l.sampleRate
	case LFODelay:
		l.Delay = v
	case LFOPitchDepth:
		l.PitchDepth = v
	case LFOAmpDepth:
		l.AmpDepth = v
	case LFOWaveform:
		l.Waveform = sixop.Waveform(math.Round(v))
	case LFOKeySync:
		l.KeySync = boolValue(v)
	}
}

// Hz returns the current LFO frequency.
func (l *LFO) Hz() float64 { return LFORateHz(l.Rate) }

// DelaySeconds returns the onset delay after a trigger.
func (l *LFO) DelaySeconds() float64 { return LFODelaySeconds(l.Delay) }

// Delayed reports whether the LFO is still waiting for its onset delay.
func (l *LFO) Delayed() bool { return l.delayLeft > 0 }

// Trigger is called on every note on.
func (l *LFO) Trigger() {
	if l.KeySync {
		l.phase = 0
		l.half = 0
	}
	if l.Delay > 0 {
		l.delayLeft = LFODelaySeconds(l.Delay)
	}
}

// Process advances the LFO by one sample and returns the pitch and amplitude
// modulation, each in [-1, 1], scaled by depth and the mod wheel.
func (l *LFO) Process(modWheel float64) (pitch, amp float64) {
	if l.delayLeft > 0 {
		l.delayLeft -= 1 / l.sampleRate
		return 0, 0
	}
	l.phase += l.increment
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
	}
	l.value = l.wave()
	return l.value * l.PitchDepth / 99 * modWheel, l.value * l.AmpDepth / 99 * modWheel
}

func (l *LFO) wave() float64 {
	p := l.phase
	switch l.Waveform {
	case sixop.Triangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case sixop.SawDown:
		return 1 - 2*p
	case sixop.SawUp:
		return 2*p - 1
	case sixop.Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case sixop.Sine:
		return math.Sin(twoPi * p)
	case sixop.SampleHold:
		half := 0
		if p >= 0.5 {
			half = 1
		}
		if half != l.half {
			l.half = half
			l.held = l.random()
		}
		return l.held
	}
	return 0
}

// random returns a pseudo-random value in [-1, 1] from a multiplicative
// congruential generator; it never allocates or locks.
func (l *LFO) random() float64 {
	l.randSeed *= 16007
	return float64(int32(l.randSeed)) / -2147483648.0
}
