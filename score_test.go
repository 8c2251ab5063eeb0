package sixop_test

import (
	"errors"
	"math"
	"testing"

	"github.com/sixop/sixop"
)

func TestScoreValidate(t *testing.T) {
	for _, tt := range []struct {
		name  string
		event sixop.ScoreEvent
		valid bool
	}{
		{"note", sixop.ScoreEvent{Time: 1, Note: 60, Velocity: 127, Duration: 1}, true},
		{"control", sixop.ScoreEvent{Time: 0, Control: sixop.ControlSustain, Value: 1}, true},
		{"negative time", sixop.ScoreEvent{Time: -0.1, Note: 60}, false},
		{"nan duration", sixop.ScoreEvent{Note: 60, Duration: math.NaN()}, false},
		{"note too high", sixop.ScoreEvent{Note: 128}, false},
		{"velocity too high", sixop.ScoreEvent{Note: 60, Velocity: 128}, false},
		{"unknown control", sixop.ScoreEvent{Control: "expression"}, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := sixop.Score{Events: []sixop.ScoreEvent{tt.event}}
			err := s.Validate()
			if tt.valid && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, sixop.ErrInvalidScore) {
				t.Fatalf("expected ErrInvalidScore, got %v", err)
			}
		})
	}
}

func TestScoreLength(t *testing.T) {
	s := sixop.Score{
		Tail: 1,
		Events: []sixop.ScoreEvent{
			{Time: 0, Note: 60, Duration: 2},
			{Time: 1.5, Note: 62, Duration: 1},
			{Time: 0.5, Control: sixop.ControlModWheel, Value: 1},
		},
	}
	if l := s.Length(); l != 3.5 {
		t.Fatalf("Length = %v, expected 3.5", l)
	}
	if s.Rate() != sixop.DefaultSampleRate {
		t.Fatalf("Rate = %d", s.Rate())
	}
	s.SampleRate = 22050
	if s.Rate() != 22050 {
		t.Fatalf("Rate = %d", s.Rate())
	}
}
