// Package gomidi feeds MIDI input into the engine. The translation from MIDI
// messages to engine commands is independent of any driver; the caller
// supplies the driver (rtmidi needs cgo, so it is chosen in cmd).
package gomidi

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/sixop/sixop/engine"
)

// MIDI controller numbers understood by Translate.
const (
	ccModWheel     = 1
	ccSustain      = 64
	ccAllSoundOff  = 120
	ccAllNotesOff  = 123
	sustainOnValue = 64
	pitchBendRange = 8192
)

// Omni makes a Context accept messages on every channel.
const Omni = -1

// Sender is where translated commands go; *engine.Controller implements it.
type Sender interface {
	Send(engine.Command) bool
}

// Translate converts a channel voice message into an engine command. Note on
// with velocity 0 is a note off, CC 1 is the mod wheel, CC 64 the sustain
// pedal, CC 120 and 123 panic, and program change loads the preset with that
// index. Messages on other channels than channel (0-15, or Omni) and
// messages with no meaning to the synth return false.
func Translate(msg midi.Message, channel int) (engine.Command, bool) {
	var ch, key, vel, cc, val, prog uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return accept(ch, channel, engine.NoteOn(int(key), int(vel)))
	case msg.GetNoteEnd(&ch, &key):
		return accept(ch, channel, engine.NoteOff(int(key)))
	case msg.GetPitchBend(&ch, &rel, &abs):
		return accept(ch, channel, engine.PitchBend(float64(rel)/pitchBendRange))
	case msg.GetProgramChange(&ch, &prog):
		return accept(ch, channel, engine.LoadPreset(int(prog)))
	case msg.GetControlChange(&ch, &cc, &val):
		switch cc {
		case ccModWheel:
			return accept(ch, channel, engine.ModWheel(float64(val)/127))
		case ccSustain:
			return accept(ch, channel, engine.SustainPedal(val >= sustainOnValue))
		case ccAllSoundOff, ccAllNotesOff:
			return accept(ch, channel, engine.Panic())
		}
	}
	return engine.Command{}, false
}

func accept(got uint8, want int, c engine.Command) (engine.Command, bool) {
	if want != Omni && int(got) != want {
		return engine.Command{}, false
	}
	return c, true
}

// Context owns an open MIDI input and forwards its messages to a Sender. The
// methods are safe for concurrent use.
type Context struct {
	mu      sync.Mutex
	driver  drivers.Driver
	sender  Sender
	channel int
	in      drivers.In
	stop    func()
	dropped int
}

var ErrNoDriver = errors.New("no MIDI driver available")

// NewContext returns a context that sends translated commands to sender. A
// nil driver is allowed; such a context has no devices.
func NewContext(driver drivers.Driver, sender Sender, channel int) *Context {
	return &Context{driver: driver, sender: sender, channel: channel}
}

// InputDevices lists the names of the available MIDI inputs.
func (c *Context) InputDevices() ([]string, error) {
	if c.driver == nil {
		return nil, ErrNoDriver
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}

// Open opens the first input whose name starts with namePrefix; an empty
// prefix takes the first input. A previously opened input is closed.
func (c *Context) Open(namePrefix string) error {
	if c.driver == nil {
		return ErrNoDriver
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), namePrefix) {
			return c.open(in)
		}
	}
	if namePrefix == "" {
		return errors.New("could not find any MIDI input")
	}
	return fmt.Errorf("could not find a MIDI input starting with %q", namePrefix)
}

func (c *Context) open(in drivers.In) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeInput()
	if err := in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	name := in.String()
	stop, err := midi.ListenTo(in, c.HandleMessage, midi.HandleError(func(err error) {
		log.Printf("MIDI input %v: %v", name, err)
		// a device that disappears mid-note would leave notes hanging
		c.sender.Send(engine.Panic())
	}))
	if err != nil {
		in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.in, c.stop = in, stop
	return nil
}

// HandleMessage translates and sends one message. It is the listener
// callback and never blocks.
func (c *Context) HandleMessage(msg midi.Message, timestampms int32) {
	cmd, ok := Translate(msg, c.channel)
	if !ok {
		return
	}
	if !c.sender.Send(cmd) {
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

// Dropped returns how many translated messages the sender rejected.
func (c *Context) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Device returns the name of the open input, or "" if none is open.
func (c *Context) Device() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.in == nil {
		return ""
	}
	return c.in.String()
}

func (c *Context) closeInput() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.in != nil && c.in.IsOpen() {
		c.in.Close()
	}
	c.in = nil
}

// Close closes the open input and the driver.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeInput()
	if c.driver != nil {
		c.driver.Close()
	}
}
