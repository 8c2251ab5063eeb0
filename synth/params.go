package synth

import (
	"fmt"

	"github.com/sixop/sixop"
)

type (
	// OperatorParam names a patch field of an operator.
	OperatorParam int
	// EnvelopeParam names one of the eight envelope fields.
	EnvelopeParam int
	// LFOParam names a field of the global LFO.
	LFOParam int

	// ParamInfo documents the name and the accepted range of a parameter.
	// Values outside the range are clamped when set.
	ParamInfo struct {
		Name string
		Min  float64
		Max  float64
	}
)

const (
	OpRatio OperatorParam = iota
	OpLevel
	OpDetune
	OpFeedback
	OpVelocitySensitivity
	OpKeyScaleLevel
	OpKeyScaleRate
	OpFixed
	OpFixedFrequency
	OpMute
	NumOperatorParams
)

const (
	EnvRate1 EnvelopeParam = iota
	EnvRate2
	EnvRate3
	EnvRate4
	EnvLevel1
	EnvLevel2
	EnvLevel3
	EnvLevel4
	NumEnvelopeParams
)

const (
	LFORate LFOParam = iota
	LFODelay
	LFOPitchDepth
	LFOAmpDepth
	LFOWaveform
	LFOKeySync
	NumLFOParams
)

var OperatorParams = [NumOperatorParams]ParamInfo{
	OpRatio:               {Name: "ratio", Min: 0.5, Max: 32},
	OpLevel:               {Name: "level", Min: 0, Max: 99},
	OpDetune:              {Name: "detune", Min: -100, Max: 100},
	OpFeedback:            {Name: "feedback", Min: 0, Max: 7},
	OpVelocitySensitivity: {Name: "velocitysensitivity", Min: 0, Max: 7},
	OpKeyScaleLevel:       {Name: "keyscalelevel", Min: 0, Max: 99},
	OpKeyScaleRate:        {Name: "keyscalerate", Min: 0, Max: 7},
	OpFixed:               {Name: "fixed", Min: 0, Max: 1},
	OpFixedFrequency:      {Name: "fixedfrequency", Min: 0, Max: maxOperatorFrequency},
	OpMute:                {Name: "mute", Min: 0, Max: 1},
}

var EnvelopeParams = [NumEnvelopeParams]ParamInfo{
	EnvRate1:  {Name: "rate1", Min: 0, Max: 99},
	EnvRate2:  {Name: "rate2", Min: 0, Max: 99},
	EnvRate3:  {Name: "rate3", Min: 0, Max: 99},
	EnvRate4:  {Name: "rate4", Min: 0, Max: 99},
	EnvLevel1: {Name: "level1", Min: 0, Max: 99},
	EnvLevel2: {Name: "level2", Min: 0, Max: 99},
	EnvLevel3: {Name: "level3", Min: 0, Max: 99},
	EnvLevel4: {Name: "level4", Min: 0, Max: 99},
}

var LFOParams = [NumLFOParams]ParamInfo{
	LFORate:       {Name: "rate", Min: 0, Max: 99},
	LFODelay:      {Name: "delay", Min: 0, Max: 99},
	LFOPitchDepth: {Name: "pitchdepth", Min: 0, Max: 99},
	LFOAmpDepth:   {Name: "ampdepth", Min: 0, Max: 99},
	LFOWaveform:   {Name: "waveform", Min: 0, Max: float64(sixop.NumWaveforms - 1)},
	LFOKeySync:    {Name: "keysync", Min: 0, Max: 1},
}

func (p OperatorParam) Valid() bool { return p >= 0 && p < NumOperatorParams }
func (p EnvelopeParam) Valid() bool { return p >= 0 && p < NumEnvelopeParams }
func (p LFOParam) Valid() bool      { return p >= 0 && p < NumLFOParams }

func (p OperatorParam) String() string {
	if !p.Valid() {
		return fmt.Sprintf("OperatorParam(%d)", int(p))
	}
	return OperatorParams[p].Name
}

func (p EnvelopeParam) String() string {
	if !p.Valid() {
		return fmt.Sprintf("EnvelopeParam(%d)", int(p))
	}
	return EnvelopeParams[p].Name
}

func (p LFOParam) String() string {
	if !p.Valid() {
		return fmt.Sprintf("LFOParam(%d)", int(p))
	}
	return LFOParams[p].Name
}

// Clamp limits v to the range of the parameter. ok is false for NaN values,
// which should be ignored.
func (i ParamInfo) Clamp(v float64) (ret float64, ok bool) {
	if v != v {
		return 0, false
	}
	return min(max(v, i.Min), i.Max), true
}

// ParseOperatorParam looks up an operator parameter by its name.
func ParseOperatorParam(name string) (OperatorParam, bool) {
	for i, p := range OperatorParams {
		if p.Name == name {
			return OperatorParam(i), true
		}
	}
	return 0, false
}

// ParseEnvelopeParam looks up an envelope parameter by its name.
func ParseEnvelopeParam(name string) (EnvelopeParam, bool) {
	for i, p := range EnvelopeParams {
		if p.Name == name {
			return EnvelopeParam(i), true
		}
	}
	return 0, false
}

// ParseLFOParam looks up an LFO parameter by its name.
func ParseLFOParam(name string) (LFOParam, bool) {
	for i, p := range LFOParams {
		if p.Name == name {
			return LFOParam(i), true
		}
	}
	return 0, false
}

func boolValue(v float64) bool { return v >= 0.5 }

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
