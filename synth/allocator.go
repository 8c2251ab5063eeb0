package synth

import (
	"errors"
	"fmt"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
)

// MaxVoices is the polyphony of the synth.
const MaxVoices = 16

const numNotes = maxNote + 1

// Allocator owns the voice pool, the LFO and the global parameters, and
// turns note events into voice triggers. It is not safe for concurrent use:
// everything, including the setters, must run on the render goroutine. The
// engine package provides the lock-free plumbing for driving it from other
// goroutines.
type Allocator struct {
	voices     [MaxVoices]Voice
	held       [numNotes]int8 // note -> voice index, -1 if none
	sustained  [numNotes]bool // note offs deferred by the sustain pedal
	numHeld    int
	lfo        LFO
	globals    sixop.Globals
	presetName string
	router     *algorithm.Router
	sampleRate float64
}

var ErrSampleRate = errors.New("sample rate must be positive")

// NewAllocator creates the voice pool with the default patch loaded.
func NewAllocator(router *algorithm.Router, sampleRate int) (*Allocator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("NewAllocator: %d: %w", sampleRate, ErrSampleRate)
	}
	if router == nil {
		router = algorithm.NewRouter(algorithm.Builtin())
	}
	a := &Allocator{router: router, sampleRate: float64(sampleRate)}
	for i := range a.voices {
		a.voices[i].init(router, a.sampleRate)
	}
	for i := range a.held {
		a.held[i] = -1
	}
	a.lfo = NewLFO(a.sampleRate)
	a.globals = sixop.DefaultGlobals()
	p := sixop.DefaultPatch()
	a.LoadPatch(&p)
	return a, nil
}

func (a *Allocator) SampleRate() int          { return int(a.sampleRate) }
func (a *Allocator) Router() *algorithm.Router { return a.router }
func (a *Allocator) Globals() sixop.Globals    { return a.globals }
func (a *Allocator) PresetName() string        { return a.presetName }
func (a *Allocator) LFO() *LFO                 { return &a.lfo }

// Voice returns voice i of the pool.
func (a *Allocator) Voice(i int) *Voice { return &a.voices[i] }

// VoiceFor returns the voice index bound to a held note.
func (a *Allocator) VoiceFor(note int) (int, bool) {
	if note < 0 || note >= numNotes || a.held[note] < 0 {
		return 0, false
	}
	return int(a.held[note]), true
}

// HeldNotes returns the number of notes bound to a voice.
func (a *Allocator) HeldNotes() int { return a.numHeld }

// ActiveVoices counts the voices that are currently sounding.
func (a *Allocator) ActiveVoices() int {
	n := 0
	for i := range a.voices {
		if a.voices[i].active {
			n++
		}
	}
	return n
}

// NoteOn starts a note; velocity is 0-127 and a velocity of 0 is a note off.
func (a *Allocator) NoteOn(note, velocity int) {
	if note < 0 || note >= numNotes {
		return
	}
	if velocity <= 0 {
		a.NoteOff(note)
		return
	}
	vel := float64(min(velocity, 127)) / 127
	a.lfo.Trigger()
	a.sustained[note] = false
	if a.globals.Mono {
		a.clearHeld()
		a.voices[0].Trigger(note, vel, a.globals.MasterTune, a.globals.Portamento)
		a.bind(note, 0)
		return
	}
	if v := a.held[note]; v >= 0 {
		a.voices[v].Trigger(note, vel, a.globals.MasterTune, false)
		return
	}
	for i := range a.voices {
		if !a.voices[i].active {
			a.voices[i].Trigger(note, vel, a.globals.MasterTune, false)
			a.bind(note, i)
			return
		}
	}
	victim := a.stealVictim()
	a.voices[victim].Steal()
	a.voices[victim].Trigger(note, vel, a.globals.MasterTune, false)
	a.bind(note, victim)
}

// NoteOff releases the voice of a note, or defers the release while the
// sustain pedal is down.
func (a *Allocator) NoteOff(note int) {
	if note < 0 || note >= numNotes || a.held[note] < 0 {
		return
	}
	if a.globals.Sustain {
		a.sustained[note] = true
		return
	}
	a.voices[a.held[note]].Release()
	a.unbindNote(note)
}

// stealVictim prefers the voice released the longest time ago; if every
// voice is still held, the one triggered the longest time ago. Ties go to the
// lowest index.
func (a *Allocator) stealVictim() int {
	best, bestReleased, bestAge := 0, false, -1
	for i := range a.voices {
		v := &a.voices[i]
		age := v.age
		if v.released {
			age = v.releaseAge
		}
		switch {
		case v.released && !bestReleased:
			best, bestReleased, bestAge = i, true, age
		case v.released == bestReleased && age > bestAge:
			best, bestAge = i, age
		}
	}
	return best
}

func (a *Allocator) bind(note, voice int) {
	for n := range a.held {
		if n != note && int(a.held[n]) == voice {
			a.unbindNote(n)
		}
	}
	if a.held[note] < 0 {
		a.numHeld++
	}
	a.held[note] = int8(voice)
}

func (a *Allocator) unbindNote(note int) {
	if a.held[note] >= 0 {
		a.held[note] = -1
		a.numHeld--
	}
	a.sustained[note] = false
}

func (a *Allocator) clearHeld() {
	for n := range a.held {
		a.held[n] = -1
		a.sustained[n] = false
	}
	a.numHeld = 0
}

// Process renders one output sample.
func (a *Allocator) Process() float64 {
	g := &a.globals
	pitch, amp := a.lfo.Process(g.ModWheel)
	sum := 0.0
	n := 0
	for i := range a.voices {
		v := &a.voices[i]
		if !v.active {
			continue
		}
		n++
		sum += v.Process(g.Algorithm, g.PitchBend, g.PitchBendRange, g.PortamentoTime, pitch, amp)
	}
	return SoftLimit(sum * VoiceScale(n) * g.MasterVolume)
}

// Panic stops every voice immediately, without fades.
func (a *Allocator) Panic() {
	for i := range a.voices {
		a.voices[i].Stop()
	}
	a.clearHeld()
}

// SetGlobals applies a complete set of global parameters, with the same side
// effects as the individual setters.
func (a *Allocator) SetGlobals(g sixop.Globals) {
	g = g.Clamp()
	a.SetMonoMode(g.Mono)
	a.SetSustain(g.Sustain)
	a.globals = g
}

func (a *Allocator) SetAlgorithm(id int) { a.globals.Algorithm = id }

func (a *Allocator) SetMasterVolume(v float64) {
	a.globals.MasterVolume = sixop.Clamp(v, 0, 1, a.globals.MasterVolume)
}

func (a *Allocator) SetMasterTune(cents float64) {
	a.globals.MasterTune = sixop.Clamp(cents, -sixop.MaxMasterTune, sixop.MaxMasterTune, a.globals.MasterTune)
}

func (a *Allocator) SetPitchBend(v float64) {
	a.globals.PitchBend = sixop.Clamp(v, -1, 1, a.globals.PitchBend)
}

func (a *Allocator) SetPitchBendRange(semitones float64) {
	a.globals.PitchBendRange = sixop.Clamp(semitones, 0, sixop.MaxPitchBendRange, a.globals.PitchBendRange)
}

func (a *Allocator) SetModWheel(v float64) {
	a.globals.ModWheel = sixop.Clamp(v, 0, 1, a.globals.ModWheel)
}

func (a *Allocator) SetPortamento(on bool) { a.globals.Portamento = on }

func (a *Allocator) SetPortamentoTime(t float64) {
	a.globals.PortamentoTime = sixop.Clamp(t, 0, sixop.MaxPortamentoTime, a.globals.PortamentoTime)
}

// SetMonoMode switches between mono and poly. Entering mono keeps only the
// first sounding voice.
func (a *Allocator) SetMonoMode(mono bool) {
	if mono == a.globals.Mono {
		return
	}
	a.globals.Mono = mono
	if !mono {
		return
	}
	kept := -1
	for i := range a.voices {
		if !a.voices[i].active {
			continue
		}
		if kept < 0 {
			kept = i
			continue
		}
		a.voices[i].Stop()
	}
	for n := range a.held {
		if a.held[n] >= 0 && int(a.held[n]) != kept {
			a.unbindNote(n)
		}
	}
	if kept > 0 {
		// mono mode always plays on voice 0, so the survivor moves there
		a.voices[0], a.voices[kept] = a.voices[kept], a.voices[0]
		a.relink(0)
		a.relink(kept)
		for n := range a.held {
			if int(a.held[n]) == kept {
				a.held[n] = 0
			}
		}
	}
}

// relink points the router view of voice i back at its own operators after
// the voice struct has been moved.
func (a *Allocator) relink(i int) {
	v := &a.voices[i]
	for j := range v.ops {
		v.procs[j] = &v.ops[j]
	}
}

// SetSustain sets the sustain pedal. Releasing the pedal releases every note
// whose note off arrived while it was down.
func (a *Allocator) SetSustain(down bool) {
	if down == a.globals.Sustain {
		return
	}
	a.globals.Sustain = down
	if down {
		return
	}
	for n := range a.sustained {
		if a.sustained[n] {
			a.sustained[n] = false
			a.NoteOff(n)
		}
	}
}

// SetOperatorParam changes a field of operator op (0-5) on every voice.
// Out of range operators are ignored.
func (a *Allocator) SetOperatorParam(op int, p OperatorParam, value float64) {
	if op < 0 || op >= sixop.NumOperators {
		return
	}
	for i := range a.voices {
		a.voices[i].ops[op].Set(p, value)
	}
}

// SetEnvelopeParam changes an envelope field of operator op on every voice.
func (a *Allocator) SetEnvelopeParam(op int, p EnvelopeParam, value float64) {
	if op < 0 || op >= sixop.NumOperators {
		return
	}
	for i := range a.voices {
		a.voices[i].ops[op].Envelope.Set(p, value)
	}
}

func (a *Allocator) SetLFOParam(p LFOParam, value float64) {
	a.lfo.Set(p, value)
}

// LoadPatch applies a patch to all voices: operators, envelopes, LFO,
// algorithm and function settings. Sounding voices keep playing with the new
// parameters.
func (a *Allocator) LoadPatch(p *sixop.Patch) {
	for i := range a.voices {
		for j := range a.voices[i].ops {
			a.voices[i].ops[j].SetPatch(p.Operators[j])
		}
	}
	if p.LFO != nil {
		a.lfo.SetPatch(*p.LFO)
	} else {
		a.lfo.SetPatch(sixop.DefaultLFO())
	}
	a.SetGlobals(p.Apply(a.globals))
	a.presetName = p.Name
}

// VoiceInitialize stops every voice and loads the "Init Voice" patch.
func (a *Allocator) VoiceInitialize() {
	a.Panic()
	p := sixop.InitPatch()
	a.LoadPatch(&p)
}

// Patch returns the current patch of the synth, as stored on voice 0.
func (a *Allocator) Patch() sixop.Patch {
	var s sixop.Status
	a.Status(&s)
	return s.Patch()
}

// Status fills s with the current state. It does not allocate.
func (a *Allocator) Status(s *sixop.Status) {
	s.PresetName = a.presetName
	s.Globals = a.globals
	s.ActiveVoices = a.ActiveVoices()
	s.LFO = a.lfo.Patch()
	s.LFOHz = a.lfo.Hz()
	s.LFODelay = a.lfo.DelaySeconds()
	for j := range s.Operators {
		s.Operators[j] = a.voices[0].ops[j].Patch()
	}
}
