// Package oto plays an AudioSource on the default audio device.
package oto

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/sixop/sixop"
)

const bytesPerFrame = 8 // two float32 channels

type (
	// Context is the audio device. It implements sixop.AudioContext.
	Context struct {
		ctx        *oto.Context
		sampleRate int
	}

	// Playback pulls audio from a source until it is closed. It implements
	// sixop.CloserWaiter.
	Playback struct {
		player *oto.Player
		once   sync.Once
		done   chan struct{}
	}

	// Reader adapts an AudioSource to the io.Reader that oto pulls
	// from. It owns a frame buffer reused across reads.
	Reader struct {
		source sixop.AudioSource
		buffer sixop.AudioBuffer
	}
)

// NewContext opens the default audio device in stereo float32 at the given
// sample rate and waits until it is ready.
func NewContext(sampleRate int) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts pulling audio from source on the device's audio thread.
func (c *Context) Play(source sixop.AudioSource) (sixop.CloserWaiter, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, fmt.Errorf("oto context failed: %w", err)
	}
	p := &Playback{
		player: c.ctx.NewPlayer(NewReader(source)),
		done:   make(chan struct{}),
	}
	p.player.Play()
	return p, nil
}

// Close suspends the device. oto allows only one context per process, so
// the device itself stays allocated.
func (c *Context) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *Playback) Close() error {
	var err error
	p.once.Do(func() {
		err = p.player.Close()
		close(p.done)
	})
	if err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait blocks until the playback is closed.
func (p *Playback) Wait() { <-p.done }

// NewReader returns an io.Reader producing the source's audio as
// interleaved little-endian float32 stereo.
func NewReader(source sixop.AudioSource) *Reader {
	return &Reader{source: source}
}

func (r *Reader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buffer) < frames {
		r.buffer = make(sixop.AudioBuffer, frames)
	}
	buf := r.buffer[:frames]
	r.source.ReadAudio(buf)
	BufferToFloat32LE(buf, p)
	return frames * bytesPerFrame, nil
}
