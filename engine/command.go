package engine

import (
	"fmt"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/synth"
)

type (
	// Command is a message from the control side to the render side. It is a
	// flat value rather than an interface so that sending it never allocates;
	// Kind selects which of the other fields are meaningful.
	Command struct {
		Kind          CommandKind
		Note          int
		Velocity      int
		Operator      int // 0-5
		OperatorParam synth.OperatorParam
		EnvelopeParam synth.EnvelopeParam
		LFOParam      synth.LFOParam
		Index         int
		Value         float64
	}

	CommandKind uint8
)

const (
	CmdNone CommandKind = iota
	CmdNoteOn
	CmdNoteOff
	CmdSetOperatorParam
	CmdSetEnvelopeParam
	CmdSetLFOParam
	CmdLoadPreset
	CmdVoiceInitialize
	CmdPanic

	// global parameters, read by the synth once per buffer
	CmdSetAlgorithm
	CmdSetMasterVolume
	CmdSetMasterTune
	CmdSetPitchBendRange
	CmdSetMonoMode
	CmdSetPortamentoEnable
	CmdSetPortamentoTime
	CmdPitchBend
	CmdModWheel
	CmdSustainPedal

	numCommandKinds
)

var commandNames = [numCommandKinds]string{
	"None", "NoteOn", "NoteOff", "SetOperatorParam", "SetEnvelopeParam", "SetLfoParam",
	"LoadPreset", "VoiceInitialize", "Panic", "SetAlgorithm", "SetMasterVolume",
	"SetMasterTune", "SetPitchBendRange", "SetMonoMode", "SetPortamentoEnable",
	"SetPortamentoTime", "PitchBend", "ModWheel", "SustainPedal",
}

func (k CommandKind) String() string {
	if k >= numCommandKinds {
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
	return commandNames[k]
}

func NoteOn(note, velocity int) Command {
	return Command{Kind: CmdNoteOn, Note: note, Velocity: velocity}
}

func NoteOff(note int) Command { return Command{Kind: CmdNoteOff, Note: note} }

func SetOperatorParam(op int, p synth.OperatorParam, value float64) Command {
	return Command{Kind: CmdSetOperatorParam, Operator: op, OperatorParam: p, Value: value}
}

func SetEnvelopeParam(op int, p synth.EnvelopeParam, value float64) Command {
	return Command{Kind: CmdSetEnvelopeParam, Operator: op, EnvelopeParam: p, Value: value}
}

func SetLFOParam(p synth.LFOParam, value float64) Command {
	return Command{Kind: CmdSetLFOParam, LFOParam: p, Value: value}
}

func LoadPreset(index int) Command { return Command{Kind: CmdLoadPreset, Index: index} }
func VoiceInitialize() Command     { return Command{Kind: CmdVoiceInitialize} }
func Panic() Command               { return Command{Kind: CmdPanic} }

func SetAlgorithm(id int) Command { return Command{Kind: CmdSetAlgorithm, Index: id} }
func SetMasterVolume(v float64) Command {
	return Command{Kind: CmdSetMasterVolume, Value: v}
}
func SetMasterTune(cents float64) Command {
	return Command{Kind: CmdSetMasterTune, Value: cents}
}
func SetPitchBendRange(semitones float64) Command {
	return Command{Kind: CmdSetPitchBendRange, Value: semitones}
}
func SetMonoMode(mono bool) Command { return Command{Kind: CmdSetMonoMode, Value: boolValue(mono)} }
func SetPortamentoEnable(on bool) Command {
	return Command{Kind: CmdSetPortamentoEnable, Value: boolValue(on)}
}
func SetPortamentoTime(t float64) Command {
	return Command{Kind: CmdSetPortamentoTime, Value: t}
}
func PitchBend(v float64) Command    { return Command{Kind: CmdPitchBend, Value: v} }
func ModWheel(v float64) Command     { return Command{Kind: CmdModWheel, Value: v} }
func SustainPedal(down bool) Command { return Command{Kind: CmdSustainPedal, Value: boolValue(down)} }

// Global reports whether the command changes one of the per-buffer global
// parameters rather than voice state.
func (c Command) Global() bool {
	return c.Kind >= CmdSetAlgorithm && c.Kind < numCommandKinds
}

// Ordered reports whether a global command changes which notes sound. Such
// commands keep their place among note events and travel through the queue.
func (c Command) Ordered() bool {
	return c.Kind == CmdSustainPedal || c.Kind == CmdSetMonoMode
}

// ApplyGlobal writes a global command into g, clamping the value. Other
// commands leave g unchanged.
func (c Command) ApplyGlobal(g sixop.Globals) sixop.Globals {
	on := c.Value >= 0.5
	switch c.Kind {
	case CmdSetAlgorithm:
		if c.Index > 0 {
			g.Algorithm = c.Index
		}
	case CmdSetMasterVolume:
		g.MasterVolume = c.Value
	case CmdSetMasterTune:
		g.MasterTune = c.Value
	case CmdSetPitchBendRange:
		g.PitchBendRange = c.Value
	case CmdSetMonoMode:
		g.Mono = on
	case CmdSetPortamentoEnable:
		g.Portamento = on
	case CmdSetPortamentoTime:
		g.PortamentoTime = c.Value
	case CmdPitchBend:
		g.PitchBend = c.Value
	case CmdModWheel:
		g.ModWheel = c.Value
	case CmdSustainPedal:
		g.Sustain = on
	}
	return g.Clamp()
}

func (c Command) String() string {
	switch c.Kind {
	case CmdNoteOn:
		return fmt.Sprintf("NoteOn(%d, %d)", c.Note, c.Velocity)
	case CmdNoteOff:
		return fmt.Sprintf("NoteOff(%d)", c.Note)
	case CmdSetOperatorParam:
		return fmt.Sprintf("SetOperatorParam(%d, %v, %g)", c.Operator+1, c.OperatorParam, c.Value)
	case CmdSetEnvelopeParam:
		return fmt.Sprintf("SetEnvelopeParam(%d, %v, %g)", c.Operator+1, c.EnvelopeParam, c.Value)
	case CmdSetLFOParam:
		return fmt.Sprintf("SetLfoParam(%v, %g)", c.LFOParam, c.Value)
	case CmdLoadPreset, CmdSetAlgorithm:
		return fmt.Sprintf("%v(%d)", c.Kind, c.Index)
	case CmdVoiceInitialize, CmdPanic, CmdNone:
		return c.Kind.String()
	}
	return fmt.Sprintf("%v(%g)", c.Kind, c.Value)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
