package sixop

// Status is a read-only copy of the synth state, published periodically by
// the render side for display. It is a plain value: copying it never
// allocates.
type Status struct {
	Sequence     uint64 // incremented on every publication
	Frame        uint64 // frames rendered since start
	PresetName   string
	Globals      Globals
	ActiveVoices int
	LFO          LFOPatch
	LFOHz        float64
	LFODelay     float64 // seconds
	Operators    [NumOperators]OperatorPatch
	Level        Level
}

// Level is the measured output level in decibels relative to full scale.
type Level struct {
	Peak float64
	RMS  float64
}

// Patch reconstructs the current patch from the status, for saving what is
// playing as a preset.
func (s *Status) Patch() Patch {
	g := s.Globals
	lfo := s.LFO
	return Patch{
		Name:      s.PresetName,
		Algorithm: g.Algorithm,
		Operators: s.Operators,
		LFO:       &lfo,
		Function: &FunctionPatch{
			MasterTune:     &g.MasterTune,
			Mono:           &g.Mono,
			BendRange:      &g.PitchBendRange,
			Portamento:     &g.Portamento,
			PortamentoTime: &g.PortamentoTime,
		},
	}
}
