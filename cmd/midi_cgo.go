//go:build cgo

package cmd

import (
	"log"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/sixop/sixop/gomidi"
)

// NewMidiContext opens the rtmidi driver. If that fails, the context has no
// devices.
func NewMidiContext(sender gomidi.Sender, channel int) *gomidi.Context {
	driver, err := rtmididrv.New()
	if err != nil {
		log.Printf("MIDI unavailable: %v", err)
		return gomidi.NewContext(nil, sender, channel)
	}
	return gomidi.NewContext(driver, sender, channel)
}
