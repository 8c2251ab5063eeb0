package synth_test

import (
	"math"
	"testing"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/synth"
)

func newVoice(t *testing.T) *synth.Voice {
	t.Helper()
	v := synth.NewVoice(algorithm.NewRouter(algorithm.Builtin()), sampleRate)
	p := sixop.DefaultPatch()
	for i := 0; i < sixop.NumOperators; i++ {
		v.Operator(i).SetPatch(p.Operators[i])
	}
	return v
}

func render(v *synth.Voice, n int) (peak float64) {
	for i := 0; i < n; i++ {
		peak = math.Max(peak, math.Abs(v.Process(5, 0, 2, 50, 0, 0)))
	}
	return peak
}

func TestVoiceFadesIn(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, false)
	if !v.Active() || v.Fade() != synth.FadeIn || v.FadeGain() != 0 {
		t.Fatalf("triggered voice: active %v fade %v gain %v", v.Active(), v.Fade(), v.FadeGain())
	}
	render(v, 300)
	if v.Fade() != synth.FadeNormal || v.FadeGain() != 1 {
		t.Errorf("fade in not finished after 300 samples: %v %v", v.Fade(), v.FadeGain())
	}
}

func TestVoicePortamentoIsContinuous(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, true)
	render(v, 300)
	start := v.Frequency()
	v.Trigger(72, 1, 0, true)
	if v.Frequency() != start {
		t.Fatalf("frequency jumped on a glide: %v -> %v", start, v.Frequency())
	}
	if math.Abs(v.TargetFrequency()-2*start) > 1e-9 {
		t.Fatalf("target %v, expected %v", v.TargetFrequency(), 2*start)
	}
	limit := synth.GlideStepLimit(sampleRate)
	prev := start
	for i := 0; i < sampleRate; i++ {
		v.Process(5, 0, 2, 50, 0, 0)
		f := v.Frequency()
		if f < prev || (f-prev)/prev > limit+1e-12 {
			t.Fatalf("glide step at sample %d from %v to %v", i, prev, f)
		}
		prev = f
	}
	if prev <= start {
		t.Error("glide did not move")
	}
}

func TestVoiceZeroPortamentoTimeJumps(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, true)
	render(v, 300)
	v.Trigger(72, 1, 0, true)
	v.Process(5, 0, 2, 0, 0, 0)
	if math.Abs(v.Frequency()-v.TargetFrequency()) > 1e-9 || math.Abs(v.Frequency()-synth.NoteFrequency(72)) > 1e-9 {
		t.Errorf("frequency %v after one sample, expected %v", v.Frequency(), synth.NoteFrequency(72))
	}
}

func TestVoiceWithoutPortamentoJumps(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, false)
	render(v, 10)
	v.Trigger(72, 1, 0, false)
	if v.Frequency() != synth.NoteFrequency(72) {
		t.Errorf("frequency %v, expected %v", v.Frequency(), synth.NoteFrequency(72))
	}
}

func TestVoiceStealKeepsNotePending(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, false)
	render(v, 300)
	v.Steal()
	v.Trigger(64, 0.5, 0, false)
	if n, ok := v.PendingNote(); !ok || n != 64 {
		t.Fatalf("pending note %v %v, expected 64", n, ok)
	}
	if v.Note() != 60 || v.Fade() != synth.FadeOut {
		t.Fatalf("stolen voice should keep fading out note 60, has %v in %v", v.Note(), v.Fade())
	}
	render(v, 100)
	if _, ok := v.PendingNote(); ok {
		t.Fatal("pending note did not start after the fade out")
	}
	if v.Note() != 64 || v.Fade() != synth.FadeIn || !v.Active() {
		t.Errorf("voice plays %v in %v, expected note 64 fading in", v.Note(), v.Fade())
	}
}

func TestVoiceReleaseDuringStealIsKept(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, false)
	render(v, 300)
	v.Steal()
	v.Trigger(64, 1, 0, false)
	v.Release()
	render(v, 100)
	if v.Note() != 64 || !v.Released() {
		t.Errorf("note 64 should start released, note %v released %v", v.Note(), v.Released())
	}
}

func TestVoiceStopsWhenEnvelopesFinish(t *testing.T) {
	v := newVoice(t)
	v.Trigger(60, 1, 0, false)
	render(v, 1000)
	v.Release()
	render(v, 2*sampleRate)
	if v.Active() {
		t.Error("voice still active after every envelope finished")
	}
}

func TestVoiceCarriersMixToSqrtK(t *testing.T) {
	var defs []sixop.AlgorithmDef
	for _, k := range []int{1, 2, 3, 6} {
		def := sixop.AlgorithmDef{ID: k}
		for c := 1; c <= k; c++ {
			def.Carriers = append(def.Carriers, c)
		}
		defs = append(defs, def)
	}
	router := algorithm.NewRouter(algorithm.New(defs))
	newEqualVoice := func() *synth.Voice {
		v := synth.NewVoice(router, sampleRate)
		for i := 0; i < sixop.NumOperators; i++ {
			v.Operator(i).SetPatch(sixop.DefaultOperator())
		}
		v.Trigger(57, 0.8, 0, false)
		return v
	}
	for _, k := range []int{1, 2, 3, 6} {
		single, mixed := newEqualVoice(), newEqualVoice()
		for i := 0; i < 2000; i++ {
			one := single.Process(1, 0, 2, 0, 0, 0)
			got := mixed.Process(k, 0, 2, 0, 0, 0)
			want := float64(k) * one / math.Sqrt(float64(k))
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("k=%d sample %d: output %v, expected %v", k, i, got, want)
			}
		}
	}
}
