package engine

import (
	"errors"
	"fmt"
)

// AudioBackend decodes sound files into playable voices. Hosts implement it.
type AudioBackend interface {
	// NewVoice decodes data. name is the asset path; its extension selects
	// the codec.
	NewVoice(name string, data []byte, opts VoiceOptions) (Voice, error)
}

// VoiceOptions configures a decoded voice.
type VoiceOptions struct {
	Loop   bool
	Volume float64
}

// Voice is one decoded, playable sound.
type Voice interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	Rewind() error
	Close() error
}

var ErrSoundNotReady = errors.New("engine: sound not ready")

// NullAudio accepts every sound and produces no output.
type NullAudio struct{}

func (NullAudio) NewVoice(name string, data []byte, opts VoiceOptions) (Voice, error) {
	return &nullVoice{volume: opts.Volume}, nil
}

type nullVoice struct {
	playing bool
	volume  float64
	closed  bool
}

func (v *nullVoice) Play() {
	if !v.closed {
		v.playing = true
	}
}
func (v *nullVoice) Pause()              { v.playing = false }
func (v *nullVoice) IsPlaying() bool     { return v.playing }
func (v *nullVoice) SetVolume(x float64) { v.volume = x }
func (v *nullVoice) Rewind() error       { return nil }
func (v *nullVoice) Close() error {
	v.playing = false
	v.closed = true
	return nil
}

// SoundOptions configures NewSound. A zero Volume means 1.
type SoundOptions struct {
	Loop     bool
	Autoplay bool
	Volume   float64
}

// Sound is an audio asset owned by a scene.
type Sound struct {
	Name string
	URL  string

	opts       SoundOptions
	voice      Voice
	ready      bool
	wantPlay   bool
	disposed   bool

	// OnReady is notified on the frame goroutine once decoding succeeds.
	OnReady Observable[*Sound]
	// OnError is notified if the asset cannot be read or decoded.
	OnError Observable[error]
}

// NewSound reads and decodes url in the background. ready, if non-nil, is
// called on the frame goroutine once the sound can play; with Autoplay set
// playback starts at the same time.
func NewSound(name, url string, s *Scene, ready func(), opts SoundOptions) *Sound {
	if opts.Volume == 0 {
		opts.Volume = 1
	}
	snd := &Sound{Name: name, URL: url, opts: opts, wantPlay: opts.Autoplay}
	s.sounds = append(s.sounds, snd)
	e := s.engine
	go func() {
		voice, err := loadVoice(e, url, opts)
		e.Post(func() {
			if err != nil {
				e.Logf("sound %s: %v", name, err)
				snd.OnError.Notify(err)
				return
			}
			if snd.disposed {
				voice.Close()
				return
			}
			snd.voice = voice
			snd.ready = true
			if snd.wantPlay {
				voice.Play()
			}
			if ready != nil {
				ready()
			}
			snd.OnReady.Notify(snd)
		})
	}()
	return snd
}

func loadVoice(e *Engine, url string, opts SoundOptions) (Voice, error) {
	data, err := readAsset(e.assets, url)
	if err != nil {
		return nil, err
	}
	v, err := e.audio.NewVoice(url, data, VoiceOptions{Loop: opts.Loop, Volume: opts.Volume})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return v, nil
}

// IsReady reports whether the sound is decoded.
func (snd *Sound) IsReady() bool { return snd.ready }

// Loop reports whether the sound repeats.
func (snd *Sound) Loop() bool { return snd.opts.Loop }

// Autoplay reports whether the sound starts once decoded.
func (snd *Sound) Autoplay() bool { return snd.opts.Autoplay }

// IsPlaying reports whether the voice is producing output.
func (snd *Sound) IsPlaying() bool { return snd.voice != nil && snd.voice.IsPlaying() }

// Play starts playback, or schedules it for when decoding completes.
func (snd *Sound) Play() {
	if snd.disposed {
		return
	}
	snd.wantPlay = true
	if snd.voice != nil {
		snd.voice.Play()
	}
}

// Pause halts playback at the current position.
func (snd *Sound) Pause() {
	snd.wantPlay = false
	if snd.voice != nil {
		snd.voice.Pause()
	}
}

// Stop halts playback and rewinds.
func (snd *Sound) Stop() error {
	snd.wantPlay = false
	if snd.voice == nil {
		return ErrSoundNotReady
	}
	snd.voice.Pause()
	return snd.voice.Rewind()
}

// SetVolume sets the output gain, 1 being unchanged.
func (snd *Sound) SetVolume(v float64) {
	snd.opts.Volume = v
	if snd.voice != nil {
		snd.voice.SetVolume(v)
	}
}

// Volume returns the output gain.
func (snd *Sound) Volume() float64 { return snd.opts.Volume }

// Dispose stops and releases the voice.
func (snd *Sound) Dispose() {
	if snd.disposed {
		return
	}
	snd.disposed = true
	snd.wantPlay = false
	if snd.voice != nil {
		snd.voice.Close()
		snd.voice = nil
	}
	snd.ready = false
	snd.OnReady.Clear()
	snd.OnError.Clear()
}
