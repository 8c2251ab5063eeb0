package engine

import (
	"github.com/sixop/sixop"
	"github.com/sixop/sixop/synth"
)

// Player is the render side of the engine. It implements sixop.AudioSource:
// at the start of every buffer it takes a pending panic, picks up the latest
// global parameters and applies all queued commands, then renders the
// buffer. ReadAudio never blocks, never logs and does not allocate once the
// meter has seen the largest buffer size.
type Player struct {
	synth   *synth.Allocator
	broker  *Broker
	presets Presets
	meter   *Meter

	frame          uint64
	sequence       uint64
	sinceStatus    int
	statusInterval int
}

// StatusInterval is the number of frames between status publications.
const StatusInterval = 1024

func NewPlayer(b *Broker, s *synth.Allocator, presets Presets) *Player {
	p := &Player{
		synth:          s,
		broker:         b,
		presets:        presets,
		meter:          NewMeter(4096),
		statusInterval: StatusInterval,
	}
	p.publishStatus()
	return p
}

// Synth gives access to the allocator. It must only be used from the render
// goroutine.
func (p *Player) Synth() *synth.Allocator { return p.synth }

func (p *Player) ReadAudio(buffer sixop.AudioBuffer) {
	if p.broker.TakePanic() {
		p.synth.Panic()
	}
	if g, fresh := p.broker.Globals.Peek(); fresh {
		// sustain and mono arrive through the queue
		ng, cur := *g, p.synth.Globals()
		ng.Sustain, ng.Mono = cur.Sustain, cur.Mono
		p.synth.SetGlobals(ng)
	}
	p.processCommands()
	for i := range buffer {
		s := float32(p.synth.Process())
		buffer[i] = [2]float32{s, s}
	}
	p.frame += uint64(len(buffer))
	p.meter.Update(buffer)
	p.sinceStatus += len(buffer)
	if p.sinceStatus >= p.statusInterval {
		p.publishStatus()
	}
}

func (p *Player) processCommands() {
	for {
		c, ok := p.broker.Commands.Receive()
		if !ok {
			return
		}
		switch c.Kind {
		case CmdNoteOn:
			p.synth.NoteOn(c.Note, c.Velocity)
		case CmdNoteOff:
			p.synth.NoteOff(c.Note)
		case CmdSetOperatorParam:
			p.synth.SetOperatorParam(c.Operator, c.OperatorParam, c.Value)
		case CmdSetEnvelopeParam:
			p.synth.SetEnvelopeParam(c.Operator, c.EnvelopeParam, c.Value)
		case CmdSetLFOParam:
			p.synth.SetLFOParam(c.LFOParam, c.Value)
		case CmdLoadPreset:
			if p.presets == nil {
				continue
			}
			if patch, ok := p.presets.Patch(c.Index); ok {
				p.synth.LoadPatch(patch)
			}
		case CmdVoiceInitialize:
			p.synth.VoiceInitialize()
		case CmdPanic:
			p.synth.Panic()
		case CmdNone:
		default:
			if c.Global() {
				p.synth.SetGlobals(c.ApplyGlobal(p.synth.Globals()))
			}
		}
	}
}

func (p *Player) publishStatus() {
	s := p.broker.Status.Slot()
	p.synth.Status(s)
	p.sequence++
	s.Sequence = p.sequence
	s.Frame = p.frame
	s.Level = p.meter.Level()
	p.broker.Status.Publish()
	p.meter.Reset()
	p.sinceStatus = 0
}
