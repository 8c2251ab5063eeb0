package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/cmd"
	"github.com/sixop/sixop/engine"
	"github.com/sixop/sixop/gomidi"
	"github.com/sixop/sixop/oto"
	"github.com/sixop/sixop/synth"
	"github.com/sixop/sixop/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	rate := flag.Int("rate", 44100, "Sample rate of the audio device.")
	presetName := flag.String("preset", "", "Load the preset with this name at start.")
	algorithms := flag.String("algorithms", "", "Load the algorithm library from this YAML file instead of the built-in one.")
	builtinOnly := flag.Bool("builtin", false, "Do not load user presets.")
	midiInput := flag.String("midi-input", "", "Connect the MIDI input whose name starts with this prefix.")
	midiFirst := flag.Bool("midi", false, "Connect the first MIDI input found.")
	midiChannel := flag.Int("midi-channel", 0, "Listen only to this MIDI channel, 1-16. 0 listens to all channels.")
	listMidi := flag.Bool("list-midi", false, "List the MIDI inputs and exit.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	lib, err := cmd.Library(*algorithms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	bank := cmd.Presets(*builtinOnly)
	s, err := synth.NewAllocator(algorithm.NewRouter(lib), *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	broker := engine.NewBroker()
	ctrl := engine.NewController(broker, bank)
	player := engine.NewPlayer(broker, s, bank)

	channel := gomidi.Omni
	if *midiChannel >= 1 && *midiChannel <= 16 {
		channel = *midiChannel - 1
	}
	midiContext := cmd.NewMidiContext(ctrl, channel)
	defer midiContext.Close()
	if *listMidi {
		devices, err := midiContext.InputDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return
	}
	if *midiInput != "" || *midiFirst {
		if err := midiContext.Open(*midiInput); err != nil {
			log.Printf("MIDI input: %v", err)
		} else {
			log.Printf("MIDI input: %v", midiContext.Device())
		}
	}
	if *presetName != "" {
		i, ok := bank.Find(*presetName)
		if !ok {
			fmt.Fprintf(os.Stderr, "no preset named %q\n", *presetName)
			os.Exit(1)
		}
		ctrl.LoadPreset(i)
	}

	audioContext, err := oto.NewContext(*rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
		os.Exit(1)
	}
	defer audioContext.Close()
	playback, err := audioContext.Play(player)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	c := &console{ctrl: ctrl, bank: bank, lib: lib, out: os.Stdout}
	go func() {
		c.run(os.Stdin)
		playback.Close()
	}()
	playback.Wait()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Sixop live player: plays the synth from MIDI input and console commands.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nType \"help\" at the prompt for the console commands.\n")
}
