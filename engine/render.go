package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/synth"
)

var ErrUnknownPreset = errors.New("unknown preset")

// renderBlock is the largest buffer handed to the player during offline
// rendering; events split blocks so that they land on their exact frame.
const renderBlock = 1024

type timedCommand struct {
	frame int
	cmd   Command
}

// ParseScore decodes a score from JSON or, failing that, from YAML. Unknown
// YAML fields are an error.
func ParseScore(data []byte) (*sixop.Score, error) {
	var score sixop.Score
	if errJSON := json.Unmarshal(data, &score); errJSON != nil {
		score = sixop.Score{}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if errYaml := dec.Decode(&score); errYaml != nil {
			return nil, fmt.Errorf("the score could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}
	return &score, nil
}

// Render plays a score through a fresh synth and returns the rendered audio.
// The events go through the same controller, queue and player as live input,
// each applied at the first frame at or after its time.
func Render(score *sixop.Score, presets Presets, router *algorithm.Router) (sixop.AudioBuffer, error) {
	if err := score.Validate(); err != nil {
		return nil, fmt.Errorf("Render: %w", err)
	}
	rate := score.Rate()
	s, err := synth.NewAllocator(router, rate)
	if err != nil {
		return nil, fmt.Errorf("Render: %w", err)
	}
	broker := NewBroker()
	ctrl := NewController(broker, presets)
	player := NewPlayer(broker, s, presets)
	if score.Preset != "" {
		if presets == nil {
			return nil, fmt.Errorf("Render: preset %q: %w", score.Preset, ErrUnknownPreset)
		}
		i, ok := presets.Find(score.Preset)
		if !ok {
			return nil, fmt.Errorf("Render: preset %q: %w", score.Preset, ErrUnknownPreset)
		}
		ctrl.LoadPreset(i)
	}
	events := scoreCommands(score, float64(rate))
	total := int(math.Ceil(score.Length() * float64(rate)))
	buffer := make(sixop.AudioBuffer, total)
	pos, next := 0, 0
	for pos < total {
		for next < len(events) && events[next].frame <= pos {
			if !ctrl.Send(events[next].cmd) {
				// full queue: let the player drain it without advancing time
				player.ReadAudio(nil)
				if !ctrl.Send(events[next].cmd) {
					return nil, fmt.Errorf("Render: could not send %v", events[next].cmd)
				}
			}
			next++
		}
		end := min(total, pos+renderBlock)
		if next < len(events) {
			end = min(end, events[next].frame)
		}
		player.ReadAudio(buffer[pos:end])
		pos = end
	}
	return buffer, nil
}

// scoreCommands expands the score into commands sorted by frame. At equal
// frames note offs come first, so a note can be restarted on the frame where
// it ends.
func scoreCommands(score *sixop.Score, rate float64) []timedCommand {
	frame := func(t float64) int { return int(math.Round(t * rate)) }
	var ret []timedCommand
	for _, e := range score.Events {
		f := frame(e.Time)
		switch e.Control {
		case sixop.ControlNone:
			vel := e.Velocity
			if vel == 0 {
				vel = 100
			}
			ret = append(ret, timedCommand{f, NoteOn(e.Note, vel)})
			if e.Duration > 0 {
				ret = append(ret, timedCommand{frame(e.Time + e.Duration), NoteOff(e.Note)})
			}
		case sixop.ControlModWheel:
			ret = append(ret, timedCommand{f, ModWheel(e.Value)})
		case sixop.ControlPitchBend:
			ret = append(ret, timedCommand{f, PitchBend(e.Value)})
		case sixop.ControlSustain:
			ret = append(ret, timedCommand{f, SustainPedal(e.Value >= 0.5)})
		case sixop.ControlAlgorithm:
			ret = append(ret, timedCommand{f, SetAlgorithm(int(e.Value))})
		case sixop.ControlVolume:
			ret = append(ret, timedCommand{f, SetMasterVolume(e.Value)})
		case sixop.ControlMono:
			ret = append(ret, timedCommand{f, SetMonoMode(e.Value >= 0.5)})
		case sixop.ControlPortamento:
			ret = append(ret, timedCommand{f, SetPortamentoEnable(e.Value >= 0.5)})
		case sixop.ControlPortamentoTime:
			ret = append(ret, timedCommand{f, SetPortamentoTime(e.Value)})
		case sixop.ControlPanic:
			ret = append(ret, timedCommand{f, Panic()})
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].frame != ret[j].frame {
			return ret[i].frame < ret[j].frame
		}
		return ret[i].cmd.Kind == CmdNoteOff && ret[j].cmd.Kind != CmdNoteOff
	})
	return ret
}
