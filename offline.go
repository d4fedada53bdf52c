// Package fluentscore compiles plain-text scores and renders them to stereo
// audio, WAV files and Standard MIDI Files.
package fluentscore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	intclip "github.com/cbegin/fluentscore-go/internal/clip"
	intfx "github.com/cbegin/fluentscore-go/internal/effects"
	intnames "github.com/cbegin/fluentscore-go/internal/names"
	intnotation "github.com/cbegin/fluentscore-go/internal/notation"
	intpcm "github.com/cbegin/fluentscore-go/internal/pcm"
	intscore "github.com/cbegin/fluentscore-go/internal/score"
	intseq "github.com/cbegin/fluentscore-go/internal/sequencer"
	intsmf "github.com/cbegin/fluentscore-go/internal/smfexport"
	intsynth "github.com/cbegin/fluentscore-go/internal/synth"
	intwt "github.com/cbegin/fluentscore-go/internal/wavetable"
)

// DefaultSampleRate is used when WithSampleRate is not given.
const DefaultSampleRate = 44100

type (
	Score  = intscore.Score
	Buffer = intpcm.Buffer

	ToneEngine  = intseq.ToneEngine
	ClipDecoder = intseq.ClipDecoder
	ClipStream  = intseq.ClipStream
	SoundFont   = intsynth.SoundFont

	ReverbSettings     = intfx.ReverbSettings
	CompressorSettings = intfx.CompressorSettings
	EchoSettings       = intfx.EchoSettings
	EQSettings         = intfx.EQSettings

	LexicalError           = intnotation.LexicalError
	UnknownSymbolError     = intnotation.UnknownSymbolError
	BeatCountMismatchError = intnotation.BeatCountMismatchError
	StructuralError        = intnotation.StructuralError
)

var (
	ErrMissingVocal    = intseq.ErrMissingVocal
	ErrTooManyChannels = intseq.ErrTooManyChannels
)

// Compile parses a score with the default notation settings.
func Compile(text string) (*Score, error) {
	return intnotation.NewParser(intnotation.DefaultParserConfig(), intnames.Default()).Parse(text)
}

// LoadSoundFont reads an .sf2 file. The result can be shared by any number
// of renders.
func LoadSoundFont(path string) (*SoundFont, error) {
	return intsynth.OpenSoundFont(path)
}

// Render compiles text and renders it.
func Render(text string, opts ...Option) (*Buffer, error) {
	s, err := Compile(text)
	if err != nil {
		return nil, err
	}
	return RenderScore(s, opts...)
}

// RenderScore renders s to a stereo buffer of Score.TotalSamples frames.
// Nothing is rendered when the score fails validation.
func RenderScore(s *Score, opts ...Option) (*Buffer, error) {
	cfg, err := newRenderConfig(opts)
	if err != nil {
		return nil, err
	}
	engine, err := cfg.toneEngine()
	if err != nil {
		return nil, err
	}
	clips := cfg.clips
	if clips == nil {
		clips = intclip.Decoder{Root: cfg.clipRoot}
	}

	began := time.Now()
	comp := intseq.NewCompositor(engine, cfg.sampleRate, intseq.Options{Clips: clips, Logger: cfg.logger})
	buf, err := comp.Render(s)
	if err != nil {
		return nil, err
	}
	if bus := cfg.bus(); !bus.Empty() {
		bus.Apply(buf)
	}
	cfg.logger.Debug("score rendered",
		"measures", len(s.Measures),
		"frames", buf.Len(),
		"sample_rate", cfg.sampleRate,
		"elapsed", time.Since(began))
	return buf, nil
}

// WriteWAV writes buf as a 16-bit stereo PCM WAV file.
func WriteWAV(w io.WriteSeeker, buf *Buffer, sampleRate int) error {
	return buf.WriteWAV16(w, sampleRate)
}

// WriteWAVFloat writes buf as a 32-bit float stereo WAV file.
func WriteWAVFloat(w io.Writer, buf *Buffer, sampleRate int) error {
	_, err := w.Write(EncodeWAVFloat32LE(buf.Interleave(), sampleRate, 2))
	return err
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	return intpcm.EncodeWAVFloat32LE(samples, sampleRate, channels)
}

// ExportMIDI writes the scheduled timeline of s as a Standard MIDI File.
// Vocal sections are omitted.
func ExportMIDI(w io.Writer, s *Score) error {
	return intsmf.Write(w, s)
}

// Option configures rendering and playback.
type Option func(*renderConfig)

type renderConfig struct {
	sampleRate int
	engine     ToneEngine
	soundFont  *SoundFont
	clips      ClipDecoder
	clipRoot   string
	logger     *slog.Logger
	reverb     *ReverbSettings
	compressor *CompressorSettings
	echo       *EchoSettings
	eq         *EQSettings
	normalize  float32
}

func newRenderConfig(opts []Option) (renderConfig, error) {
	cfg := renderConfig{sampleRate: DefaultSampleRate}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return cfg, errors.New("sampleRate must be positive")
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg, nil
}

func (cfg *renderConfig) toneEngine() (ToneEngine, error) {
	switch {
	case cfg.engine != nil:
		return cfg.engine, nil
	case cfg.soundFont != nil:
		engine, err := intsynth.New(cfg.soundFont, cfg.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("soundfont engine: %w", err)
		}
		return engine, nil
	default:
		return intwt.New(cfg.sampleRate, intwt.DefaultParams()), nil
	}
}

// bus assembles the master bus in a fixed order: eq, compressor, echo,
// reverb.
func (cfg *renderConfig) bus() *intfx.Bus {
	bus := intfx.NewBus()
	if cfg.eq != nil {
		bus.Add(intfx.NewEQ3Band(cfg.sampleRate, *cfg.eq))
	}
	if cfg.compressor != nil {
		bus.Add(intfx.NewCompressor(cfg.sampleRate, *cfg.compressor))
	}
	if cfg.echo != nil {
		bus.Add(intfx.NewDelay(cfg.sampleRate, *cfg.echo))
	}
	if cfg.reverb != nil {
		bus.Add(intfx.NewReverb(cfg.sampleRate, *cfg.reverb))
	}
	bus.NormalizeTo(cfg.normalize)
	return bus
}

func WithSampleRate(rate int) Option {
	return func(cfg *renderConfig) {
		cfg.sampleRate = rate
	}
}

// WithToneEngine renders with engine instead of the built-in synthesizer.
// An engine carries channel state, so it must not serve two renders at once.
func WithToneEngine(engine ToneEngine) Option {
	return func(cfg *renderConfig) {
		cfg.engine = engine
	}
}

// WithSoundFont renders through a SoundFont synthesizer built per render.
func WithSoundFont(sf *SoundFont) Option {
	return func(cfg *renderConfig) {
		cfg.soundFont = sf
	}
}

func WithClipDecoder(d ClipDecoder) Option {
	return func(cfg *renderConfig) {
		cfg.clips = d
	}
}

// WithClipRoot resolves relative vocal clip paths against dir.
func WithClipRoot(dir string) Option {
	return func(cfg *renderConfig) {
		cfg.clipRoot = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *renderConfig) {
		cfg.logger = logger
	}
}

func DefaultReverb() ReverbSettings         { return intfx.DefaultReverb() }
func DefaultCompressor() CompressorSettings { return intfx.DefaultCompressor() }
func DefaultEcho() EchoSettings             { return intfx.DefaultEcho() }
func DefaultEQ() EQSettings                 { return intfx.DefaultEQ() }

func WithReverb(s ReverbSettings) Option {
	return func(cfg *renderConfig) {
		cfg.reverb = &s
	}
}

func WithCompressor(s CompressorSettings) Option {
	return func(cfg *renderConfig) {
		cfg.compressor = &s
	}
}

func WithEcho(s EchoSettings) Option {
	return func(cfg *renderConfig) {
		cfg.echo = &s
	}
}

func WithEQ(s EQSettings) Option {
	return func(cfg *renderConfig) {
		cfg.eq = &s
	}
}

// WithNormalize scales the finished mix so its peak equals peak.
func WithNormalize(peak float32) Option {
	return func(cfg *renderConfig) {
		cfg.normalize = peak
	}
}
