package synth

import (
	"math"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
)

type (
	// Voice is one note: six operators, the glide state and a short fade used
	// to avoid clicks when the voice is started or stolen.
	Voice struct {
		ops     [sixop.NumOperators]Operator
		procs   [sixop.NumOperators]algorithm.Operator
		outputs [sixop.NumOperators]float64

		router      *algorithm.Router
		topology    *algorithm.Topology
		algorithmID int

		note             int
		velocity         float64
		baseFrequency    float64
		currentFrequency float64
		targetFrequency  float64

		active     bool
		released   bool
		age        int // samples since trigger
		releaseAge int // samples since release

		fade        FadeState
		fadeGain    float64
		fadeInStep  float64
		fadeOutStep float64
		glideLimit  float64
		sampleRate  float64

		pending pendingNote
	}

	FadeState int

	pendingNote struct {
		ok         bool
		note       int
		velocity   float64
		tune       float64
		portamento bool
		released   bool
	}
)

const (
	FadeNormal FadeState = iota
	FadeIn
	FadeOut
)

func (f FadeState) String() string {
	switch f {
	case FadeNormal:
		return "Normal"
	case FadeIn:
		return "FadeIn"
	case FadeOut:
		return "FadeOut"
	}
	return "FadeState(?)"
}

// NewVoice returns an inactive voice. The voice must not be copied after
// creation, because the router reaches its operators through pointers.
func NewVoice(router *algorithm.Router, sampleRate float64) *Voice {
	v := &Voice{}
	v.init(router, sampleRate)
	return v
}

func (v *Voice) init(router *algorithm.Router, sampleRate float64) {
	v.router = router
	v.sampleRate = sampleRate
	v.fadeInStep = 1 / (fadeInSeconds * sampleRate)
	v.fadeOutStep = 1 / (fadeOutSeconds * sampleRate)
	v.glideLimit = GlideStepLimit(sampleRate)
	v.algorithmID = -1
	for i := range v.ops {
		v.ops[i] = NewOperator(sampleRate)
		v.procs[i] = &v.ops[i]
	}
}

// Operator gives access to one operator, 0-5.
func (v *Voice) Operator(i int) *Operator { return &v.ops[i] }

func (v *Voice) Active() bool             { return v.active }
func (v *Voice) Released() bool           { return v.released }
func (v *Voice) Note() int                { return v.note }
func (v *Voice) Fade() FadeState          { return v.fade }
func (v *Voice) FadeGain() float64        { return v.fadeGain }
func (v *Voice) Frequency() float64       { return v.currentFrequency }
func (v *Voice) TargetFrequency() float64 { return v.targetFrequency }

// PendingNote returns the note waiting for a stolen voice to finish fading.
func (v *Voice) PendingNote() (note int, ok bool) { return v.pending.note, v.pending.ok }

// Trigger starts a note. The voice glides from its current frequency only if
// portamento is on, the voice is already sounding and the pitch changes.
// A voice that is fading out after a steal keeps the note pending and starts
// it once the fade has finished.
func (v *Voice) Trigger(note int, velocity, masterTune float64, portamento bool) {
	if v.active && v.fade == FadeOut {
		v.pending = pendingNote{ok: true, note: note, velocity: velocity, tune: masterTune, portamento: portamento}
		v.age, v.releaseAge, v.released = 0, 0, false
		return
	}
	v.start(note, velocity, masterTune, portamento)
}

func (v *Voice) start(note int, velocity, masterTune float64, portamento bool) {
	freq := NoteFrequency(note) * CentsRatio(masterTune)
	glide := portamento && v.active && freq != v.targetFrequency
	v.targetFrequency = freq
	v.baseFrequency = freq
	if !glide {
		v.currentFrequency = freq
	}
	if !v.active {
		v.fadeGain = 0
	}
	v.fade = FadeIn
	v.note = note
	v.velocity = velocity
	v.active = true
	v.released = false
	v.age, v.releaseAge = 0, 0
	for i := range v.ops {
		v.ops[i].Trigger(v.currentFrequency, velocity, note)
	}
}

// Steal fades the voice out quickly; it keeps sounding until the fade ends
// and then stops.
func (v *Voice) Steal() {
	if !v.active {
		return
	}
	v.fade = FadeOut
}

// Release starts the release stage of every operator.
func (v *Voice) Release() {
	if v.pending.ok {
		v.pending.released = true
		return
	}
	if !v.active || v.released {
		return
	}
	v.released = true
	v.releaseAge = 0
	for i := range v.ops {
		v.ops[i].Release()
	}
}

// Stop silences the voice at once, dropping any pending note.
func (v *Voice) Stop() {
	for i := range v.ops {
		v.ops[i].Reset()
	}
	v.active = false
	v.released = false
	v.fade = FadeNormal
	v.fadeGain = 0
	v.pending = pendingNote{}
	v.age, v.releaseAge = 0, 0
}

// Process renders one sample. pitchBend is -1..1 and scaled by
// pitchBendRange semitones; lfoPitch and lfoAmp are the LFO outputs for this
// sample.
func (v *Voice) Process(algorithmID int, pitchBend, pitchBendRange, portamentoTime, lfoPitch, lfoAmp float64) float64 {
	if !v.active {
		return 0
	}
	if algorithmID != v.algorithmID || v.topology == nil {
		v.algorithmID = algorithmID
		v.topology = v.router.Topology(algorithmID)
	}
	v.age++
	if v.released {
		v.releaseAge++
	}
	v.glide(portamentoTime)
	freq := v.currentFrequency * SemitoneRatio(pitchBend*pitchBendRange+lfoPitch*lfoPitchSemis)
	for i := range v.ops {
		v.ops[i].UpdateFrequencyOnly(freq)
	}
	out := v.topology.Evaluate(&v.procs, &v.outputs)
	out *= 1 + lfoAmp*lfoAmpFraction
	switch v.fade {
	case FadeIn:
		v.fadeGain += v.fadeInStep
		if v.fadeGain >= 1 {
			v.fadeGain = 1
			v.fade = FadeNormal
		}
	case FadeOut:
		v.fadeGain -= v.fadeOutStep
		if v.fadeGain <= 0 {
			v.finishSteal()
			return 0
		}
	}
	if v.fade != FadeOut && v.allIdle() {
		v.Stop()
		return 0
	}
	return out * v.fadeGain * headroom
}

func (v *Voice) glide(portamentoTime float64) {
	if v.currentFrequency == v.targetFrequency {
		return
	}
	diff := v.targetFrequency - v.currentFrequency
	if math.Abs(diff) < glideSnapHz {
		v.currentFrequency = v.targetFrequency
		return
	}
	coef := PortamentoCoefficient(portamentoTime, v.sampleRate)
	if coef >= 1 {
		v.currentFrequency = v.targetFrequency
		return
	}
	step := diff * coef
	limit := v.currentFrequency * v.glideLimit
	step = min(max(step, -limit), limit)
	v.currentFrequency += step
}

func (v *Voice) finishSteal() {
	p := v.pending
	v.Stop()
	if p.ok {
		v.start(p.note, p.velocity, p.tune, p.portamento)
		if p.released {
			v.Release()
		}
	}
}

func (v *Voice) allIdle() bool {
	for i := range v.ops {
		if !v.ops[i].Idle() {
			return false
		}
	}
	return true
}
