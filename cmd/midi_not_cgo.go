//go:build !cgo

package cmd

import (
	"github.com/sixop/sixop/gomidi"
)

func NewMidiContext(sender gomidi.Sender, channel int) *gomidi.Context {
	// with no cgo, we cannot use rtmidi, so return a context without devices
	return gomidi.NewContext(nil, sender, channel)
}
