package engine_test

import (
	"errors"
	"testing"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/engine"
	"github.com/sixop/sixop/preset"
)

func TestRender(t *testing.T) {
	score := &sixop.Score{
		Tail:   0.5,
		Events: []sixop.ScoreEvent{{Time: 0, Note: 60, Duration: 0.5}},
	}
	buffer, err := engine.Render(score, nil, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buffer) != 44100 {
		t.Fatalf("rendered %d frames, expected 44100", len(buffer))
	}
	if p := peak(buffer[:22050]); p == 0 || p > 1 {
		t.Fatalf("peak of the held note is %v", p)
	}
}

func TestRenderPreset(t *testing.T) {
	bank := preset.Builtin()
	score := &sixop.Score{
		Preset:     "E.PIANO 1",
		SampleRate: 22050,
		Events: []sixop.ScoreEvent{
			{Time: 0, Note: 60, Velocity: 90, Duration: 0.25},
			{Time: 0.1, Control: sixop.ControlModWheel, Value: 1},
			{Time: 0.25, Note: 64, Duration: 0.25},
		},
	}
	buffer, err := engine.Render(score, bank, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buffer) != 11025 {
		t.Fatalf("rendered %d frames, expected 11025", len(buffer))
	}
	if peak(buffer) == 0 {
		t.Fatal("rendered silence")
	}
}

func TestRenderPedalOnNoteOffFrame(t *testing.T) {
	score := &sixop.Score{
		Tail: 1.5,
		Events: []sixop.ScoreEvent{
			{Time: 0, Note: 60, Duration: 0.5},
			{Time: 0.5, Control: sixop.ControlSustain, Value: 1},
		},
	}
	buffer, err := engine.Render(score, nil, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buffer) != 88200 {
		t.Fatalf("rendered %d frames, expected 88200", len(buffer))
	}
	if p := peak(buffer[:22050]); p == 0 {
		t.Fatal("the note is silent")
	}
	if p := peak(buffer[44100:]); p > 1e-4 {
		t.Fatalf("note still sounds a second after its note off, peak %v", p)
	}
}

func TestRenderManySimultaneousEvents(t *testing.T) {
	score := &sixop.Score{}
	for i := 0; i < 3*engine.CommandQueueCapacity; i++ {
		score.Events = append(score.Events, sixop.ScoreEvent{Time: 0, Note: i % 128, Duration: 0.5})
	}
	buffer, err := engine.Render(score, nil, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buffer) != 22050 {
		t.Fatalf("rendered %d frames, expected 22050", len(buffer))
	}
}

func TestRenderUnknownPreset(t *testing.T) {
	score := &sixop.Score{Preset: "NO SUCH PRESET"}
	for _, presets := range []engine.Presets{nil, preset.Builtin()} {
		if _, err := engine.Render(score, presets, nil); !errors.Is(err, engine.ErrUnknownPreset) {
			t.Fatalf("expected ErrUnknownPreset, got %v", err)
		}
	}
}

func TestParseScore(t *testing.T) {
	for _, tt := range []struct {
		name  string
		data  string
		valid bool
	}{
		{"json", `{"preset": "BASS 1", "events": [{"time": 0, "note": 40, "duration": 0.5}]}`, true},
		{"yaml", "preset: BASS 1\ntail: 1\nevents:\n  - {time: 0, note: 40, duration: 0.5}\n  - {time: 0.2, control: pitchbend, value: -1}\n", true},
		{"unknown field", "events:\n  - {time: 0, note: 40, length: 0.5}\n", false},
		{"unknown control", "events:\n  - {time: 0, control: breath, value: 1}\n", false},
		{"note out of range", "events:\n  - {time: 0, note: 200}\n", false},
		{"negative time", `{"events": [{"time": -1, "note": 40}]}`, false},
		{"garbage", "{{{", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			score, err := engine.ParseScore([]byte(tt.data))
			if !tt.valid {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore failed: %v", err)
			}
			if score.Preset != "BASS 1" || len(score.Events) == 0 || score.Events[0].Note != 40 {
				t.Fatalf("unexpected score %+v", score)
			}
		})
	}
	if _, err := engine.ParseScore([]byte(`{"events": [{"time": 0, "note": 128}]}`)); !errors.Is(err, sixop.ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
}
