package engine

import (
	"math"

	"github.com/sixop/sixop"
	"github.com/viterin/vek/vek32"
)

// Meter accumulates the peak and the mean square of the output between two
// status publications.
type Meter struct {
	Min     float64 // floor in decibels
	scratch []float32
	peak    float32
	sumSq   float64
	count   int
}

const meterFloor = -100

// NewMeter preallocates room for buffers of up to size frames.
func NewMeter(size int) *Meter {
	return &Meter{Min: meterFloor, scratch: make([]float32, 0, size)}
}

// Update adds the left channel of the buffer to the measurement. It only
// allocates if the buffer is longer than any seen before.
func (m *Meter) Update(buffer sixop.AudioBuffer) {
	if len(buffer) == 0 {
		return
	}
	m.scratch = buffer.Mono(m.scratch[:0])
	vek32.Abs_Inplace(m.scratch)
	if p := vek32.Max(m.scratch); p > m.peak {
		m.peak = p
	}
	m.sumSq += float64(vek32.Dot(m.scratch, m.scratch))
	m.count += len(m.scratch)
}

// Level returns the measurement since the last Reset, in dB relative to full
// scale.
func (m *Meter) Level() sixop.Level {
	if m.count == 0 {
		return sixop.Level{Peak: m.Min, RMS: m.Min}
	}
	return sixop.Level{
		Peak: m.decibels(float64(m.peak)),
		RMS:  m.decibels(math.Sqrt(m.sumSq / float64(m.count))),
	}
}

func (m *Meter) Reset() {
	m.peak, m.sumSq, m.count = 0, 0, 0
}

func (m *Meter) decibels(amplitude float64) float64 {
	db := 20 * math.Log10(amplitude)
	if math.IsNaN(db) || db < m.Min {
		return m.Min
	}
	return db
}
