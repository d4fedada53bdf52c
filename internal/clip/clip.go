// Package clip decodes the audio files vocal aliases point at. Streams are
// 16-bit little-endian stereo at the file's own sample rate.
package clip

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/cbegin/fluentscore-go/internal/sequencer"
)

var ErrUnsupportedFormat = errors.New("clip: unsupported audio format")

// decodedStream is what every ebiten decoder returns.
type decodedStream interface {
	io.Reader
	Length() int64
	SampleRate() int
}

type stream struct {
	decodedStream
	file *os.File
}

func (s *stream) Close() error { return s.file.Close() }

// Decoder opens WAV, MP3 and Ogg Vorbis files. Relative paths resolve
// against Root, normally the directory of the score file.
type Decoder struct {
	Root string
}

func (d Decoder) Open(path string) (sequencer.ClipStream, error) {
	if !filepath.IsAbs(path) && d.Root != "" {
		path = filepath.Join(d.Root, path)
	}
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("clip: decode %s: %w", path, err)
	}
	return &stream{decodedStream: s, file: f}, nil
}

func decoderFor(path string) (func(*os.File) (decodedStream, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return func(f *os.File) (decodedStream, error) { return wav.DecodeWithoutResampling(f) }, nil
	case ".mp3":
		return func(f *os.File) (decodedStream, error) { return mp3.DecodeWithoutResampling(f) }, nil
	case ".ogg", ".oga":
		return func(f *os.File) (decodedStream, error) { return vorbis.DecodeWithoutResampling(f) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}
