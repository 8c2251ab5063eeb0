package sixop

type (
	// AudioBuffer is a buffer of stereo frames; the synth writes the same mono
	// sample to both channels.
	AudioBuffer [][2]float32

	// AudioSource fills the buffer completely with the next frames. It is
	// called from the audio device thread and must not block.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer)
	}

	// AudioContext is an audio device that pulls frames from a source until
	// the returned CloserWaiter is closed.
	AudioContext interface {
		Play(source AudioSource) (CloserWaiter, error)
		Close() error
	}

	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// Mono returns the left channel of the buffer appended to dst.
func (buffer AudioBuffer) Mono(dst []float32) []float32 {
	for _, f := range buffer {
		dst = append(dst, f[0])
	}
	return dst
}
