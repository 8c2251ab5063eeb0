package synth

import (
	"math"

	"github.com/sixop/sixop"
)

type (
	// Envelope is a four stage DX7 style level generator. Stage1 and Stage2
	// move toward Levels[0] and Levels[1], Stage3 approaches Levels[2] and
	// holds it until release, Stage4 moves toward Levels[3] and then goes
	// Idle.
	Envelope struct {
		Rates  [4]float64
		Levels [4]float64

		stage        Stage
		current      float64
		target       float64
		rate         float64
		smoothedRate float64
		velocity     float64
		keyScale     float64
		sampleRate   float64
		smoothing    float64
	}

	Stage int
)

const (
	Idle Stage = iota
	Stage1
	Stage2
	Stage3
	Stage4
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Stage1:
		return "Stage1"
	case Stage2:
		return "Stage2"
	case Stage3:
		return "Stage3"
	case Stage4:
		return "Stage4"
	}
	return "Stage(?)"
}

// NewEnvelope returns an idle envelope with a slow organ-like patch.
func NewEnvelope(sampleRate float64) Envelope {
	e := Envelope{sampleRate: sampleRate, smoothing: smoothingCoefficient(rateSmoothingSeconds, sampleRate)}
	e.SetPatch(sixop.DefaultOperator().Envelope)
	return e
}

func (e *Envelope) SetPatch(p sixop.EnvelopePatch) {
	for i := 0; i < 4; i++ {
		e.Set(EnvRate1+EnvelopeParam(i), p.Rates[i])
		e.Set(EnvLevel1+EnvelopeParam(i), p.Levels[i])
	}
}

func (e *Envelope) Patch() sixop.EnvelopePatch {
	return sixop.EnvelopePatch{Rates: e.Rates, Levels: e.Levels}
}

// Set changes one field, clamped to 0-99. The running stage picks up the new
// value on its next transition.
func (e *Envelope) Set(p EnvelopeParam, value float64) {
	if !p.Valid() {
		return
	}
	v, ok := EnvelopeParams[p].Clamp(value)
	if !ok {
		return
	}
	if p < EnvLevel1 {
		e.Rates[p-EnvRate1] = v
	} else {
		e.Levels[p-EnvLevel1] = v
	}
}

// Trigger starts Stage1 from the current level. keyScale multiplies all
// rates until the next trigger.
func (e *Envelope) Trigger(velocity, keyScale float64) {
	e.velocity = velocity
	e.keyScale = keyScale
	e.enter(Stage1)
	if e.Rates[0] > instantAttackRate {
		e.smoothedRate = e.rate
	}
}

// Release moves any active stage to Stage4.
func (e *Envelope) Release() {
	if e.stage == Idle {
		return
	}
	e.enter(Stage4)
}

// Reset returns the envelope to Idle at level zero.
func (e *Envelope) Reset() {
	e.stage = Idle
	e.current, e.target = 0, 0
	e.rate, e.smoothedRate = 0, 0
	e.velocity = 0
}

func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float64 { return e.current }

// Process advances the envelope by one sample and returns the level scaled by
// the trigger velocity.
func (e *Envelope) Process() float64 {
	if e.stage == Idle {
		return 0
	}
	e.smoothedRate += (e.rate - e.smoothedRate) * e.smoothing
	e.current += (e.target - e.current) * ApproachFactor(e.smoothedRate)
	if math.Abs(e.current-e.target) < envelopeEpsilon {
		e.current = e.target
		switch e.stage {
		case Stage1:
			e.enter(Stage2)
		case Stage2:
			e.enter(Stage3)
		case Stage4:
			e.Reset()
			return 0
		}
	}
	return e.current * e.velocity
}

func (e *Envelope) enter(s Stage) {
	i := int(s - Stage1)
	e.stage = s
	e.target = e.Levels[i] / 99
	e.rate = EnvelopeRate(e.Rates[i], e.sampleRate) * e.keyScale
}
