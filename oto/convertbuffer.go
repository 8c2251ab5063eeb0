package oto

import (
	"encoding/binary"
	"math"

	"github.com/sixop/sixop"
)

// BufferToFloat32LE writes the frames of buffer into dst as interleaved
// little-endian float32 samples, eight bytes per frame. dst must have room
// for len(buffer)*8 bytes. Non-finite samples are written as silence.
func BufferToFloat32LE(buffer sixop.AudioBuffer, dst []byte) {
	for i, frame := range buffer {
		for c, v := range frame {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				v = 0
			}
			binary.LittleEndian.PutUint32(dst[i*8+c*4:], math.Float32bits(v))
		}
	}
}
