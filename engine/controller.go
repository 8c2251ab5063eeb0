package engine

import (
	"sync"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/synth"
)

// Presets is the read-only preset bank shared by the control side and the
// render side. Patches returned by Patch must not be modified.
type Presets interface {
	Len() int
	Patch(index int) (*sixop.Patch, bool)
	Find(name string) (int, bool)
}

// Controller is the control-side handle of a running synth. Its methods may
// be called from any number of goroutines (UI, MIDI input, automation); the
// mutex only serializes the control side and is never touched by the render
// goroutine. Every method returns immediately; false means the command was
// rejected or dropped.
type Controller struct {
	mu      sync.Mutex
	broker  *Broker
	presets Presets
	globals sixop.Globals
	status  sixop.Status
}

func NewController(b *Broker, presets Presets) *Controller {
	return &Controller{broker: b, presets: presets, globals: sixop.DefaultGlobals()}
}

// Send routes a command to the render side. Global parameters are published
// as a complete set and are visible from the next buffer; other commands are
// queued and applied in order at the start of the next buffer. The sustain
// pedal and mono mode are queued too, so a note off followed by a pedal press
// is applied in that order.
func (c *Controller) Send(cmd Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case cmd.Ordered():
		if !c.broker.TrySend(cmd) {
			return false
		}
		c.globals = cmd.ApplyGlobal(c.globals)
		return true
	case cmd.Global():
		c.publish(cmd.ApplyGlobal(c.globals))
		return true
	case cmd.Kind == CmdPanic:
		c.broker.RequestPanic()
		return true
	case cmd.Kind == CmdLoadPreset:
		p, ok := c.patch(cmd.Index)
		if !ok {
			return false
		}
		if !c.broker.TrySend(cmd) {
			return false
		}
		c.publish(p.Apply(c.globals))
		return true
	case cmd.Kind == CmdVoiceInitialize:
		if !c.broker.TrySend(cmd) {
			return false
		}
		p := sixop.InitPatch()
		c.publish(p.Apply(c.globals))
		return true
	case cmd.Kind == CmdNone:
		return false
	}
	return c.broker.TrySend(cmd)
}

func (c *Controller) patch(index int) (*sixop.Patch, bool) {
	if c.presets == nil || index < 0 || index >= c.presets.Len() {
		return nil, false
	}
	return c.presets.Patch(index)
}

func (c *Controller) publish(g sixop.Globals) {
	c.globals = g.Clamp()
	c.broker.Globals.Write(c.globals)
}

// Globals returns the global parameters as last published by the control
// side.
func (c *Controller) Globals() sixop.Globals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globals
}

// Status returns the most recent status published by the render side. fresh
// is false if nothing new was published since the previous call.
func (c *Controller) Status() (s sixop.Status, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if latest, ok := c.broker.Status.Read(); ok {
		c.status = latest
		return latest, true
	}
	return c.status, false
}

func (c *Controller) NoteOn(note, velocity int) bool { return c.Send(NoteOn(note, velocity)) }
func (c *Controller) NoteOff(note int) bool          { return c.Send(NoteOff(note)) }
func (c *Controller) SetAlgorithm(id int) bool       { return c.Send(SetAlgorithm(id)) }
func (c *Controller) SetMasterVolume(v float64) bool { return c.Send(SetMasterVolume(v)) }
func (c *Controller) SetMasterTune(cents float64) bool {
	return c.Send(SetMasterTune(cents))
}
func (c *Controller) SetPitchBendRange(semitones float64) bool {
	return c.Send(SetPitchBendRange(semitones))
}
func (c *Controller) SetMonoMode(mono bool) bool        { return c.Send(SetMonoMode(mono)) }
func (c *Controller) SetPortamentoEnable(on bool) bool  { return c.Send(SetPortamentoEnable(on)) }
func (c *Controller) SetPortamentoTime(t float64) bool  { return c.Send(SetPortamentoTime(t)) }
func (c *Controller) PitchBend(v float64) bool          { return c.Send(PitchBend(v)) }
func (c *Controller) ModWheel(v float64) bool           { return c.Send(ModWheel(v)) }
func (c *Controller) SustainPedal(down bool) bool       { return c.Send(SustainPedal(down)) }
func (c *Controller) LoadPreset(index int) bool         { return c.Send(LoadPreset(index)) }
func (c *Controller) VoiceInitialize() bool             { return c.Send(VoiceInitialize()) }
func (c *Controller) Panic() bool                       { return c.Send(Panic()) }

func (c *Controller) SetOperatorParam(op int, p synth.OperatorParam, value float64) bool {
	return c.Send(SetOperatorParam(op, p, value))
}

func (c *Controller) SetEnvelopeParam(op int, p synth.EnvelopeParam, value float64) bool {
	return c.Send(SetEnvelopeParam(op, p, value))
}

func (c *Controller) SetLFOParam(p synth.LFOParam, value float64) bool {
	return c.Send(SetLFOParam(p, value))
}
