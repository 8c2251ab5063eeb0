package sixop_test

import (
	"errors"
	"math"
	"testing"

	"github.com/sixop/sixop"
)

func TestPatchValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		modify func(p *sixop.Patch)
		valid  bool
	}{
		{"default", func(p *sixop.Patch) {}, true},
		{"nan level", func(p *sixop.Patch) { p.Operators[2].Level = math.NaN() }, false},
		{"infinite rate", func(p *sixop.Patch) { p.Operators[0].Envelope.Rates[1] = math.Inf(1) }, false},
		{"negative ratio", func(p *sixop.Patch) { p.Operators[5].Ratio = -1 }, false},
		{"negative fixed frequency", func(p *sixop.Patch) { p.Operators[1].FixedFrequency = -10 }, false},
		{"bad waveform", func(p *sixop.Patch) { p.LFO = &sixop.LFOPatch{Waveform: sixop.NumWaveforms} }, false},
		{"level out of range", func(p *sixop.Patch) { p.Operators[0].Level = 500 }, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := sixop.DefaultPatch()
			tt.modify(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, sixop.ErrInvalidPatch) {
				t.Fatalf("expected ErrInvalidPatch, got %v", err)
			}
		})
	}
}

func TestPatchApply(t *testing.T) {
	tune, mono := 20.0, true
	p := sixop.Patch{Algorithm: 12, Function: &sixop.FunctionPatch{MasterTune: &tune, Mono: &mono}}
	g := sixop.DefaultGlobals()
	g.MasterVolume = 0.3
	g.ModWheel = 0.5
	g.Portamento = true
	got := p.Apply(g)
	if got.Algorithm != 12 || got.MasterTune != 20 || !got.Mono {
		t.Fatalf("patch settings not applied: %+v", got)
	}
	if got.Portamento {
		t.Fatal("unset function field did not fall back to the default")
	}
	if got.MasterVolume != 0.3 || got.ModWheel != 0.5 {
		t.Fatalf("performance controls changed: %+v", got)
	}
	initPatch := sixop.InitPatch()
	if g := initPatch.Apply(got); g.Mono || g.MasterTune != 0 || g.Algorithm != 1 {
		t.Fatalf("init patch did not reset the function settings: %+v", g)
	}
}

func TestWaveformText(t *testing.T) {
	for w := sixop.Waveform(0); w < sixop.NumWaveforms; w++ {
		text, err := w.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) failed: %v", w, err)
		}
		var back sixop.Waveform
		if err := back.UnmarshalText(text); err != nil || back != w {
			t.Fatalf("%q parsed as %v, %v", text, back, err)
		}
		if err := back.UnmarshalText([]byte(w.String())); err != nil || back != w {
			t.Fatalf("display name %q parsed as %v, %v", w.String(), back, err)
		}
	}
	var w sixop.Waveform
	if err := w.UnmarshalText([]byte("noise")); err == nil {
		t.Fatal("unknown waveform accepted")
	}
}

func TestGlobalsClamp(t *testing.T) {
	g := sixop.Globals{
		MasterVolume:   math.NaN(),
		MasterTune:     -1000,
		PitchBend:      3,
		PitchBendRange: 24,
		ModWheel:       -1,
		PortamentoTime: 120,
	}.Clamp()
	want := sixop.Globals{
		MasterVolume:   sixop.DefaultGlobals().MasterVolume,
		MasterTune:     -sixop.MaxMasterTune,
		PitchBend:      1,
		PitchBendRange: sixop.MaxPitchBendRange,
		ModWheel:       0,
		PortamentoTime: sixop.MaxPortamentoTime,
	}
	if g != want {
		t.Fatalf("Clamp = %+v, expected %+v", g, want)
	}
}

func TestStatusPatch(t *testing.T) {
	var s sixop.Status
	s.PresetName = "SAVED"
	s.Globals = sixop.DefaultGlobals()
	s.Globals.Algorithm = 9
	s.Globals.Mono = true
	s.Globals.PortamentoTime = 12
	s.Operators[3].Ratio = 7
	s.LFO.Waveform = sixop.Square
	p := s.Patch()
	if err := p.Validate(); err != nil {
		t.Fatalf("reconstructed patch invalid: %v", err)
	}
	if p.Name != "SAVED" || p.Algorithm != 9 || p.Operators[3].Ratio != 7 || p.LFO.Waveform != sixop.Square {
		t.Fatalf("unexpected patch %+v", p)
	}
	g := p.Apply(sixop.DefaultGlobals())
	if !g.Mono || g.PortamentoTime != 12 {
		t.Fatalf("function settings lost: %+v", g)
	}
	s.Globals.Mono = false
	if !*p.Function.Mono {
		t.Fatal("patch shares memory with the status")
	}
}
