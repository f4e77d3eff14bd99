//go:build cgo || js

package hal

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"xrscene/engine"
)

const sampleRate = 44100

// hostAudio plays sounds through Ebiten's audio package. The context is
// created on first use; Ebiten allows only one per process.
type hostAudio struct {
	logger Logger

	once sync.Once
	ctx  *audio.Context
}

func newHostAudio(l Logger) engine.AudioBackend {
	return &hostAudio{logger: l}
}

func (a *hostAudio) context() *audio.Context {
	a.once.Do(func() {
		if c := audio.CurrentContext(); c != nil {
			a.ctx = c
			return
		}
		a.ctx = audio.NewContext(sampleRate)
	})
	return a.ctx
}

func (a *hostAudio) NewVoice(name string, data []byte, opts engine.VoiceOptions) (engine.Voice, error) {
	format := sniffAudio(name, data)
	var (
		stream io.ReadSeeker
		length int64
		err    error
	)
	src := bytes.NewReader(data)
	switch format {
	case formatMP3:
		var s *mp3.Stream
		if s, err = mp3.DecodeWithSampleRate(sampleRate, src); err == nil {
			stream, length = s, s.Length()
		}
	case formatWAV:
		var s *wav.Stream
		if s, err = wav.DecodeWithSampleRate(sampleRate, src); err == nil {
			stream, length = s, s.Length()
		}
	case formatVorbis:
		var s *vorbis.Stream
		if s, err = vorbis.DecodeWithSampleRate(sampleRate, src); err == nil {
			stream, length = s, s.Length()
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrAudioFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("audio %s: decode %s: %w", name, format, err)
	}

	var r io.Reader = stream
	if opts.Loop {
		r = audio.NewInfiniteLoop(stream, length)
	}
	p, err := a.context().NewPlayer(r)
	if err != nil {
		return nil, fmt.Errorf("audio %s: %w", name, err)
	}
	p.SetVolume(opts.Volume)
	a.logger.WriteLineString(fmt.Sprintf("hal: audio: %s (%s, loop=%v)", name, format, opts.Loop))
	return &hostVoice{p: p}, nil
}

type hostVoice struct {
	mu sync.Mutex
	p  *audio.Player
}

func (v *hostVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.p != nil {
		v.p.Play()
	}
}

func (v *hostVoice) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.p != nil {
		v.p.Pause()
	}
}

func (v *hostVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.p != nil && v.p.IsPlaying()
}

func (v *hostVoice) SetVolume(vol float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.p != nil {
		v.p.SetVolume(vol)
	}
}

func (v *hostVoice) Rewind() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.p == nil {
		return nil
	}
	return v.p.SetPosition(0)
}

func (v *hostVoice) Close() error {
	v.mu.Lock()
	p := v.p
	v.p = nil
	v.mu.Unlock()
	if p != nil {
		return p.Close()
	}
	return nil
}
