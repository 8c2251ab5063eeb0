// Package cmd holds the setup shared by the sixop commands.
package cmd

import (
	"fmt"

	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/preset"
)

// Library returns the built-in algorithm library, or the one in path if it
// is not empty.
func Library(path string) (*algorithm.Library, error) {
	if path == "" {
		return algorithm.Builtin(), nil
	}
	lib, err := algorithm.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load algorithms: %w", err)
	}
	return lib, nil
}

// Presets returns the preset bank, with or without the user presets.
func Presets(builtinOnly bool) *preset.Bank {
	if builtinOnly {
		return preset.Builtin()
	}
	return preset.Load()
}
