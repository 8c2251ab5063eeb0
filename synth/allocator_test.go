package synth_test

import (
	"errors"
	"math"
	"testing"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/synth"
)

func newAllocator(t *testing.T) *synth.Allocator {
	t.Helper()
	a, err := synth.NewAllocator(nil, sampleRate)
	if err != nil {
		t.Fatalf("NewAllocator failed: %v", err)
	}
	return a
}

func process(a *synth.Allocator, n int) (peak float64) {
	for i := 0; i < n; i++ {
		peak = math.Max(peak, math.Abs(a.Process()))
	}
	return peak
}

func TestNewAllocatorRejectsBadSampleRate(t *testing.T) {
	if _, err := synth.NewAllocator(nil, 0); !errors.Is(err, synth.ErrSampleRate) {
		t.Errorf("expected ErrSampleRate, got %v", err)
	}
}

func TestNoteOnProducesSound(t *testing.T) {
	a := newAllocator(t)
	if peak := process(a, 1000); peak != 0 {
		t.Fatalf("idle synth produced %v", peak)
	}
	a.NoteOn(60, 100)
	// the first samples rise from silence
	early := process(a, 20)
	late := process(a, sampleRate/10)
	if early >= late || late < 0.05 {
		t.Errorf("expected a rising note, early peak %v, later peak %v", early, late)
	}
	if late > 0.85 {
		t.Errorf("output %v exceeds the limiter ceiling", late)
	}
	if a.ActiveVoices() != 1 || a.HeldNotes() != 1 {
		t.Errorf("active %v held %v, expected 1 and 1", a.ActiveVoices(), a.HeldNotes())
	}
}

func TestVoiceStealing(t *testing.T) {
	a := newAllocator(t)
	for n := 0; n < synth.MaxVoices; n++ {
		a.NoteOn(40+n, 100)
		process(a, 10)
	}
	if a.ActiveVoices() != synth.MaxVoices {
		t.Fatalf("%d active voices, expected %d", a.ActiveVoices(), synth.MaxVoices)
	}
	a.NoteOn(80, 100)
	v, ok := a.VoiceFor(80)
	if !ok || v != 0 {
		t.Fatalf("note 80 got voice %v %v, expected the oldest voice 0", v, ok)
	}
	if _, ok := a.VoiceFor(40); ok {
		t.Error("the stolen note is still mapped")
	}
	if n, ok := a.Voice(0).PendingNote(); !ok || n != 80 {
		t.Fatalf("voice 0 pending note %v %v", n, ok)
	}
	process(a, 100)
	if a.Voice(0).Note() != 80 {
		t.Errorf("voice 0 plays %v after the fade out, expected 80", a.Voice(0).Note())
	}
	if a.HeldNotes() != synth.MaxVoices {
		t.Errorf("%d held notes, expected %d", a.HeldNotes(), synth.MaxVoices)
	}
}

func TestStealPrefersReleasedVoices(t *testing.T) {
	a := newAllocator(t)
	for n := 0; n < synth.MaxVoices; n++ {
		a.NoteOn(40+n, 100)
		process(a, 10)
	}
	a.NoteOff(45)
	process(a, 10)
	a.NoteOn(90, 100)
	if v, _ := a.VoiceFor(90); v != 5 {
		t.Errorf("note 90 got voice %d, expected the released voice 5", v)
	}
}

func TestNoteOffAndVelocityZero(t *testing.T) {
	a := newAllocator(t)
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.NoteOff(60)
	a.NoteOn(64, 0)
	if a.HeldNotes() != 0 {
		t.Errorf("%d notes held after note offs", a.HeldNotes())
	}
	if !a.Voice(0).Released() || !a.Voice(1).Released() {
		t.Error("voices should be in release")
	}
	a.NoteOff(61) // unknown notes are ignored
	a.NoteOn(200, 100)
	a.NoteOn(-1, 100)
	if a.ActiveVoices() != 2 {
		t.Errorf("%d active voices, expected 2", a.ActiveVoices())
	}
}

func TestRepeatedNoteReusesVoice(t *testing.T) {
	a := newAllocator(t)
	a.NoteOn(60, 100)
	a.NoteOn(60, 80)
	if a.ActiveVoices() != 1 || a.HeldNotes() != 1 {
		t.Errorf("active %d held %d, expected 1 and 1", a.ActiveVoices(), a.HeldNotes())
	}
}

func TestSustainPedal(t *testing.T) {
	a := newAllocator(t)
	a.SetSustain(true)
	a.NoteOn(60, 100)
	a.NoteOff(60)
	v, ok := a.VoiceFor(60)
	if !ok || a.Voice(v).Released() {
		t.Fatal("note off should be deferred while the pedal is down")
	}
	a.SetSustain(false)
	if _, ok := a.VoiceFor(60); ok || !a.Voice(v).Released() {
		t.Error("pedal up should release the deferred note")
	}
}

func TestMonoMode(t *testing.T) {
	a := newAllocator(t)
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.NoteOn(67, 100)
	a.SetMonoMode(true)
	if a.ActiveVoices() != 1 || a.HeldNotes() != 1 {
		t.Fatalf("entering mono left %d voices and %d held notes", a.ActiveVoices(), a.HeldNotes())
	}
	a.NoteOn(72, 100)
	a.NoteOn(74, 100)
	if a.ActiveVoices() != 1 || a.Voice(0).Note() != 74 {
		t.Errorf("mono mode plays %d voices, voice 0 on note %d", a.ActiveVoices(), a.Voice(0).Note())
	}
	if v, ok := a.VoiceFor(74); !ok || v != 0 {
		t.Errorf("note 74 on voice %v %v", v, ok)
	}
}

func TestMonoModeMovesSurvivorToVoiceZero(t *testing.T) {
	a := newAllocator(t)
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.Voice(0).Stop()
	if v, _ := a.VoiceFor(64); v != 1 {
		t.Fatalf("setup: note 64 on voice %d", v)
	}
	a.SetMonoMode(true)
	if v, ok := a.VoiceFor(64); !ok || v != 0 || a.Voice(0).Note() != 64 || a.Voice(1).Active() {
		t.Fatalf("survivor not moved to voice 0: mapping %v %v, note %v", v, ok, a.Voice(0).Note())
	}
	if peak := process(a, 1000); peak == 0 {
		t.Error("moved voice is silent")
	}
}

func TestPanic(t *testing.T) {
	a := newAllocator(t)
	for n := 60; n < 70; n++ {
		a.NoteOn(n, 100)
	}
	process(a, 1000)
	a.Panic()
	if v := a.Process(); v != 0 {
		t.Errorf("panic sample %v, expected silence", v)
	}
	if a.ActiveVoices() != 0 || a.HeldNotes() != 0 {
		t.Errorf("after panic: %d active, %d held", a.ActiveVoices(), a.HeldNotes())
	}
	if peak := process(a, 1000); peak != 0 {
		t.Errorf("output %v after panic", peak)
	}
}

func TestParameterSettersClamp(t *testing.T) {
	a := newAllocator(t)
	a.SetOperatorParam(0, synth.OpLevel, 150)
	a.SetOperatorParam(7, synth.OpLevel, 10)
	a.SetEnvelopeParam(2, synth.EnvRate1, -3)
	a.SetMasterVolume(math.NaN())
	a.SetPitchBendRange(40)
	for i := 0; i < synth.MaxVoices; i++ {
		if a.Voice(i).Operator(0).Level != 99 {
			t.Fatalf("voice %d operator 1 level %v", i, a.Voice(i).Operator(0).Level)
		}
		if a.Voice(i).Operator(2).Envelope.Rates[0] != 0 {
			t.Fatalf("voice %d operator 3 rate1 %v", i, a.Voice(i).Operator(2).Envelope.Rates[0])
		}
	}
	g := a.Globals()
	if g.MasterVolume != sixop.DefaultGlobals().MasterVolume || g.PitchBendRange != sixop.MaxPitchBendRange {
		t.Errorf("unexpected globals %+v", g)
	}
}

func TestLoadPatch(t *testing.T) {
	a := newAllocator(t)
	mono, bend := true, 12.0
	p := sixop.InitPatch()
	p.Name = "Test"
	p.Algorithm = 7
	p.Function = &sixop.FunctionPatch{Mono: &mono, BendRange: &bend}
	a.LoadPatch(&p)
	g := a.Globals()
	if !g.Mono || g.PitchBendRange != 12 || g.Algorithm != 7 || a.PresetName() != "Test" {
		t.Errorf("patch settings not applied: %+v %q", g, a.PresetName())
	}
	got := a.Patch()
	if got.Operators != p.Operators || got.Algorithm != 7 || *got.Function.Mono != true {
		t.Errorf("Patch does not reflect the loaded patch: %+v", got)
	}
	a.VoiceInitialize()
	if a.PresetName() != "Init Voice" || a.Globals().Mono {
		t.Errorf("VoiceInitialize left %q mono %v", a.PresetName(), a.Globals().Mono)
	}
}

func TestSoleCarrierAttackRises(t *testing.T) {
	router := algorithm.NewRouter(algorithm.New([]sixop.AlgorithmDef{{ID: 1, Carriers: []int{1}}}))
	a, err := synth.NewAllocator(router, sampleRate)
	if err != nil {
		t.Fatalf("NewAllocator failed: %v", err)
	}
	p := sixop.InitPatch()
	a.LoadPatch(&p)
	a.NoteOn(60, 100)
	prev := math.Abs(a.Process())
	if prev > 0.01 {
		t.Fatalf("first sample %v, expected a start near silence", prev)
	}
	first := prev
	// a quarter period of middle C is about 42 samples
	for i := 1; i < 30; i++ {
		v := math.Abs(a.Process())
		if v < prev {
			t.Fatalf("sample %d: magnitude fell from %v to %v", i, prev, v)
		}
		prev = v
	}
	if prev <= first {
		t.Fatalf("magnitude did not rise: %v -> %v", first, prev)
	}
}

func TestMonoPortamentoGlides(t *testing.T) {
	a := newAllocator(t)
	a.SetMonoMode(true)
	a.SetPortamento(true)
	a.SetPortamentoTime(50)
	a.NoteOn(60, 100)
	process(a, 300)
	v := a.Voice(0)
	start := v.Frequency()
	a.NoteOn(67, 100)
	if a.ActiveVoices() != 1 || v.Note() != 67 {
		t.Fatalf("mono note on: %d active voices, voice 0 plays %d", a.ActiveVoices(), v.Note())
	}
	if v.Frequency() != start {
		t.Fatalf("frequency jumped from %v to %v", start, v.Frequency())
	}
	target := v.TargetFrequency()
	if math.Abs(target-synth.NoteFrequency(67)) > 1e-9 {
		t.Fatalf("glide target %v, expected %v", target, synth.NoteFrequency(67))
	}
	limit := synth.GlideStepLimit(sampleRate)
	prev := start
	for i := 0; i < sampleRate/2; i++ {
		a.Process()
		f := v.Frequency()
		if f < prev || f > target || (f-prev)/prev > limit+1e-12 {
			t.Fatalf("sample %d: glide step from %v to %v", i, prev, f)
		}
		prev = f
	}
	if prev <= start {
		t.Fatal("frequency did not move toward the second note")
	}
}
