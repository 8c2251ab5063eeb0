package sixop

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

type (
	// Score is a list of timed events for offline rendering.
	Score struct {
		Preset     string       `yaml:"preset,omitempty" json:"preset,omitempty"`
		SampleRate int          `yaml:"samplerate,omitempty" json:"samplerate,omitempty"`
		Tail       float64      `yaml:"tail,omitempty" json:"tail,omitempty"` // seconds rendered after the last event
		Events     []ScoreEvent `yaml:"events" json:"events"`
	}

	// ScoreEvent is either a note (Control empty) or a controller change.
	// Notes with a zero Duration are held until the end of the score and a
	// zero Velocity plays at velocity 100.
	ScoreEvent struct {
		Time     float64 `yaml:"time" json:"time"`
		Note     int     `yaml:"note,omitempty" json:"note,omitempty"`
		Velocity int     `yaml:"velocity,omitempty" json:"velocity,omitempty"`
		Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
		Control  Control `yaml:"control,omitempty" json:"control,omitempty"`
		Value    float64 `yaml:"value,omitempty" json:"value,omitempty"`
	}

	// Control names a controller that a score event can change.
	Control string
)

const (
	ControlNone           Control = ""
	ControlModWheel       Control = "modwheel"
	ControlPitchBend      Control = "pitchbend"
	ControlSustain        Control = "sustain"
	ControlAlgorithm      Control = "algorithm"
	ControlVolume         Control = "volume"
	ControlMono           Control = "mono"
	ControlPortamento     Control = "portamento"
	ControlPortamentoTime Control = "portamentotime"
	ControlPanic          Control = "panic"
)

const DefaultSampleRate = 44100

var ErrInvalidScore = errors.New("invalid score")

var controls = []Control{ControlModWheel, ControlPitchBend, ControlSustain, ControlAlgorithm,
	ControlVolume, ControlMono, ControlPortamento, ControlPortamentoTime, ControlPanic}

// Validate checks the event times and notes.
func (s *Score) Validate() error {
	if s.SampleRate < 0 {
		return fmt.Errorf("sample rate %d: %w", s.SampleRate, ErrInvalidScore)
	}
	for i, e := range s.Events {
		if math.IsNaN(e.Time) || e.Time < 0 || math.IsNaN(e.Duration) || e.Duration < 0 {
			return fmt.Errorf("event %d has an invalid time or duration: %w", i, ErrInvalidScore)
		}
		if e.Control == ControlNone {
			if e.Note < 0 || e.Note > 127 || e.Velocity < 0 || e.Velocity > 127 {
				return fmt.Errorf("event %d: note %d velocity %d out of range: %w", i, e.Note, e.Velocity, ErrInvalidScore)
			}
		} else if !slices.Contains(controls, e.Control) {
			return fmt.Errorf("event %d: unknown control %q: %w", i, e.Control, ErrInvalidScore)
		}
	}
	return nil
}

// Rate returns the sample rate of the score, defaulting to 44100 Hz.
func (s *Score) Rate() int {
	if s.SampleRate <= 0 {
		return DefaultSampleRate
	}
	return s.SampleRate
}

// Length returns the score length in seconds: the end of the last event plus
// the tail.
func (s *Score) Length() float64 {
	end := 0.0
	for _, e := range s.Events {
		end = max(end, e.Time+e.Duration)
	}
	return end + s.Tail
}
