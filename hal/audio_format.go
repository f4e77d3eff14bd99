package hal

import (
	"bytes"
	"errors"
	"path"
	"strings"
)

// audioFormat is an encoded sound format the host can decode.
type audioFormat uint8

const (
	formatUnknown audioFormat = iota
	formatMP3
	formatWAV
	formatVorbis
)

var ErrAudioFormat = errors.New("hal: unsupported audio format")

func (f audioFormat) String() string {
	switch f {
	case formatMP3:
		return "mp3"
	case formatWAV:
		return "wav"
	case formatVorbis:
		return "ogg"
	default:
		return "unknown"
	}
}

// sniffAudio detects the format from the data, falling back to the
// extension of name.
func sniffAudio(name string, data []byte) audioFormat {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return formatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return formatVorbis
	case bytes.HasPrefix(data, []byte("ID3")):
		return formatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return formatMP3
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return formatMP3
	case ".wav":
		return formatWAV
	case ".ogg", ".oga":
		return formatVorbis
	}
	return formatUnknown
}
