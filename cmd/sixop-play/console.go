package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/engine"
	"github.com/sixop/sixop/preset"
	"github.com/sixop/sixop/synth"
)

// console reads commands line by line and forwards them to the controller.
type console struct {
	ctrl *engine.Controller
	bank *preset.Bank
	lib  *algorithm.Library
	out  io.Writer
}

const consoleHelp = `commands:
  note N [VEL]         note on, velocity defaults to 100
  off N                note off
  preset NAME|INDEX    load a preset
  presets              list the presets
  init                 load the init voice
  alg N                set the algorithm
  volume V             master volume 0-1
  tune CENTS           master tune
  bend V               pitch bend -1..1
  bendrange SEMIS      pitch bend range
  mod V                mod wheel 0-1
  sustain on|off       sustain pedal
  mono on|off          mono mode
  porta on|off         portamento
  portatime T          portamento time 0-99
  op N PARAM V         operator parameter, N is 1-6
  env N PARAM V        envelope parameter, N is 1-6
  lfo PARAM V          lfo parameter
  status               show the synth status
  save [DIR]           save the current sound as a user preset
  panic                stop all sound
  quit`

func (c *console) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err := c.exec(fields); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *console) exec(f []string) error {
	arg := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	num := func(i int) (float64, error) {
		v, err := strconv.ParseFloat(arg(i), 64)
		if err != nil {
			return 0, fmt.Errorf("%v: argument %d: %w", f[0], i, err)
		}
		return v, nil
	}
	var ok bool
	switch f[0] {
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
		return nil
	case "note":
		n, err := num(1)
		if err != nil {
			return err
		}
		vel := 100.0
		if len(f) > 2 {
			if vel, err = num(2); err != nil {
				return err
			}
		}
		ok = c.ctrl.NoteOn(int(n), int(vel))
	case "off":
		n, err := num(1)
		if err != nil {
			return err
		}
		ok = c.ctrl.NoteOff(int(n))
	case "preset":
		name := strings.Join(f[1:], " ")
		i, found := c.bank.Find(name)
		if !found {
			n, err := strconv.Atoi(name)
			if err != nil {
				return fmt.Errorf("%q: %w", name, preset.ErrNotFound)
			}
			i = n
		}
		ok = c.ctrl.LoadPreset(i)
	case "presets":
		for i, name := range c.bank.Names() {
			fmt.Fprintf(c.out, "%3d %v\n", i, name)
		}
		return nil
	case "init":
		ok = c.ctrl.VoiceInitialize()
	case "panic":
		ok = c.ctrl.Panic()
	case "alg":
		v, err := num(1)
		if err != nil {
			return err
		}
		if !c.lib.Has(int(v)) {
			fmt.Fprintf(c.out, "algorithm %d is not in the library, all operators will be carriers\n", int(v))
		}
		ok = c.ctrl.SetAlgorithm(int(v))
	case "volume", "tune", "bend", "bendrange", "mod", "portatime":
		v, err := num(1)
		if err != nil {
			return err
		}
		ok = c.ctrl.Send(globalCommand(f[0], v))
	case "sustain", "mono", "porta":
		on := arg(1) == "on"
		if !on && arg(1) != "off" {
			return fmt.Errorf("%v: expected on or off", f[0])
		}
		ok = c.ctrl.Send(switchCommand(f[0], on))
	case "op", "env":
		n, err := num(1)
		if err != nil {
			return err
		}
		v, err := num(3)
		if err != nil {
			return err
		}
		if f[0] == "op" {
			p, found := synth.ParseOperatorParam(arg(2))
			if !found {
				return fmt.Errorf("unknown operator parameter %q", arg(2))
			}
			ok = c.ctrl.SetOperatorParam(int(n)-1, p, v)
		} else {
			p, found := synth.ParseEnvelopeParam(arg(2))
			if !found {
				return fmt.Errorf("unknown envelope parameter %q", arg(2))
			}
			ok = c.ctrl.SetEnvelopeParam(int(n)-1, p, v)
		}
	case "lfo":
		p, found := synth.ParseLFOParam(arg(1))
		if !found {
			return fmt.Errorf("unknown lfo parameter %q", arg(1))
		}
		var v float64
		var w sixop.Waveform
		if p == synth.LFOWaveform && w.UnmarshalText([]byte(arg(2))) == nil {
			v = float64(w)
		} else {
			var err error
			if v, err = num(2); err != nil {
				return err
			}
		}
		ok = c.ctrl.SetLFOParam(p, v)
	case "status":
		s, _ := c.ctrl.Status()
		c.printStatus(&s)
		return nil
	case "save":
		s, _ := c.ctrl.Status()
		file, err := preset.Save(arg(1), s.Patch())
		if err != nil {
			return fmt.Errorf("could not save preset: %w", err)
		}
		fmt.Fprintf(c.out, "saved %v\n", file)
		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", f[0])
	}
	if !ok {
		return fmt.Errorf("%v was rejected", f[0])
	}
	return nil
}

func globalCommand(name string, v float64) engine.Command {
	switch name {
	case "volume":
		return engine.SetMasterVolume(v)
	case "tune":
		return engine.SetMasterTune(v)
	case "bend":
		return engine.PitchBend(v)
	case "bendrange":
		return engine.SetPitchBendRange(v)
	case "mod":
		return engine.ModWheel(v)
	}
	return engine.SetPortamentoTime(v)
}

func switchCommand(name string, on bool) engine.Command {
	switch name {
	case "sustain":
		return engine.SustainPedal(on)
	case "mono":
		return engine.SetMonoMode(on)
	}
	return engine.SetPortamentoEnable(on)
}

func (c *console) printStatus(s *sixop.Status) {
	g := s.Globals
	fmt.Fprintf(c.out, "%v  algorithm %d  voices %d  peak %.1f dB  rms %.1f dB\n",
		s.PresetName, g.Algorithm, s.ActiveVoices, s.Level.Peak, s.Level.RMS)
	fmt.Fprintf(c.out, "volume %.2f  tune %+.0f  bend %+.2f (±%v)  mod %.2f  sustain %v  mono %v  portamento %v (%v)\n",
		g.MasterVolume, g.MasterTune, g.PitchBend, g.PitchBendRange, g.ModWheel, g.Sustain, g.Mono, g.Portamento, g.PortamentoTime)
	fmt.Fprintf(c.out, "lfo %v %.2f Hz  delay %.2f s  pitch %v  amp %v\n",
		s.LFO.Waveform, s.LFOHz, s.LFODelay, s.LFO.PitchDepth, s.LFO.AmpDepth)
	for i, op := range s.Operators {
		fmt.Fprintf(c.out, "op%d ratio %v level %v detune %v fb %v env %v %v\n",
			i+1, op.Ratio, op.Level, op.Detune, op.Feedback, op.Envelope.Rates, op.Envelope.Levels)
	}
}
