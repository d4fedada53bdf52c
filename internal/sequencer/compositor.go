package sequencer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cbegin/fluentscore-go/internal/pcm"
	"github.com/cbegin/fluentscore-go/internal/score"
	"github.com/cbegin/fluentscore-go/internal/timing"
)

// ClipStream is decoded audio at its native sample rate: 16-bit
// little-endian interleaved stereo, Length bytes long.
type ClipStream interface {
	io.ReadCloser
	Length() int64
	SampleRate() int
}

// ClipDecoder opens the audio clip a vocal alias points at.
type ClipDecoder interface {
	Open(path string) (ClipStream, error)
}

// ErrMissingVocal is returned when a note names a vocal alias the score does
// not declare, or when vocals are present but no ClipDecoder is configured.
var ErrMissingVocal = errors.New("sequencer: vocal clip unavailable")

type Options struct {
	Clips  ClipDecoder
	Logger *slog.Logger
}

// Compositor renders a Score into a stereo buffer: a synthesized pass over
// the quantized timeline, then an additive pass for vocal clips.
type Compositor struct {
	engine     ToneEngine
	sampleRate int
	clips      ClipDecoder
	logger     *slog.Logger
}

func NewCompositor(engine ToneEngine, sampleRate int, opts Options) *Compositor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compositor{engine: engine, sampleRate: sampleRate, clips: opts.Clips, logger: logger}
}

// MeasurePlan is a measure's quantized timeline and its section-to-channel
// assignment.
type MeasurePlan struct {
	Schedule Schedule
	Channels []int
}

// Render validates the whole score, allocates the buffer once and fills it.
// Nothing is allocated when validation fails.
func (c *Compositor) Render(s *score.Score) (*pcm.Buffer, error) {
	grid, err := timing.NewGrid(c.sampleRate, s.BeatsPerMeasure, s.BeatSize, s.BPM)
	if err != nil {
		return nil, err
	}
	plans, err := Plan(s)
	if err != nil {
		return nil, err
	}
	if err := c.checkVocals(s); err != nil {
		return nil, err
	}

	buf := pcm.NewBuffer(grid.TotalSamples(len(s.Measures)))
	session := NewSession(c.engine)
	defer session.Close()
	for m, measure := range s.Measures {
		if err := c.renderMeasure(session, grid, buf, m, measure, plans[m]); err != nil {
			return nil, fmt.Errorf("measure %d: %w", m+1, err)
		}
	}
	if err := c.mixVocals(s, grid, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Plan quantizes every measure and assigns its channels.
func Plan(s *score.Score) ([]MeasurePlan, error) {
	plans := make([]MeasurePlan, len(s.Measures))
	for m, measure := range s.Measures {
		sched, err := Quantize(measure, s.BeatsPerMeasure, s.BeatSize)
		if err != nil {
			return nil, fmt.Errorf("measure %d: %w", m+1, err)
		}
		channels, err := AssignChannels(measure)
		if err != nil {
			return nil, fmt.Errorf("measure %d: %w", m+1, err)
		}
		plans[m] = MeasurePlan{Schedule: sched, Channels: channels}
	}
	return plans, nil
}

func (c *Compositor) renderMeasure(session *Session, grid timing.Grid, buf *pcm.Buffer, m int, measure score.Measure, plan MeasurePlan) error {
	if err := session.BeginMeasure(); err != nil {
		return err
	}
	for i, sec := range measure.Sections {
		if sec.IsVocal() {
			continue
		}
		if err := session.ProgramChange(plan.Channels[i], ProgramFor(sec.Instrument)); err != nil {
			return err
		}
	}
	for _, slot := range plan.Schedule.Slots {
		for _, a := range slot.Actions {
			ch := plan.Channels[a.Channel]
			if err := session.NoteOff(ch); err != nil {
				return err
			}
			for _, p := range a.Note.Pitches {
				if p.IsRest() || p.IsVocal() {
					continue
				}
				if err := session.NoteOn(ch, p.Pitch, a.Note.Velocity); err != nil {
					return err
				}
			}
		}
		start, n := plan.Schedule.Span(grid, m, slot.Index)
		left, right, err := buf.Span(start, n)
		if err != nil {
			return err
		}
		if err := session.Render(left, right); err != nil {
			return err
		}
	}
	c.logger.Debug("measure rendered", "measure", m+1, "sections", len(measure.Sections), "quantiles", plan.Schedule.Quantiles)
	return nil
}

func (c *Compositor) checkVocals(s *score.Score) error {
	aliases := s.VocalAliases()
	if len(aliases) == 0 {
		return nil
	}
	if c.clips == nil {
		return fmt.Errorf("%w: no clip decoder for %d vocal aliases", ErrMissingVocal, len(aliases))
	}
	for _, alias := range aliases {
		if _, ok := s.Vocals[alias]; !ok {
			return fmt.Errorf("%w: alias %q is not declared", ErrMissingVocal, alias)
		}
	}
	return nil
}

// mixVocals adds each vocal clip at its note's onset. Offsets use the
// unquantized beat position; clips are cut at the end of the buffer.
func (c *Compositor) mixVocals(s *score.Score, grid timing.Grid, buf *pcm.Buffer) error {
	decoded := map[string]*pcm.Buffer{}
	for m, measure := range s.Measures {
		for _, sec := range measure.Sections {
			if !sec.IsVocal() {
				continue
			}
			beats := 0.0
			for _, n := range sec.Notes {
				offset := grid.BeatOffset(m, beats)
				beats += n.BeatCount(s.BeatSize)
				for _, p := range n.Pitches {
					if !p.IsVocal() {
						continue
					}
					clip, ok := decoded[p.VocalName]
					if !ok {
						var err error
						if clip, err = c.decode(p.VocalName, s.Vocals[p.VocalName]); err != nil {
							return err
						}
						decoded[p.VocalName] = clip
					}
					mixed, err := buf.MixAt(offset, clip.Left, clip.Right)
					if err != nil {
						return fmt.Errorf("vocal %q in measure %d: %w", p.VocalName, m+1, err)
					}
					c.logger.Debug("vocal mixed", "alias", p.VocalName, "measure", m+1, "offset", offset, "frames", mixed)
				}
			}
		}
	}
	return nil
}

func (c *Compositor) decode(alias, path string) (*pcm.Buffer, error) {
	stream, err := c.clips.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocal %q (%s): %w", alias, path, err)
	}
	defer stream.Close()
	data := make([]byte, stream.Length())
	n, err := io.ReadFull(stream, data)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("decode vocal %q (%s): %w", alias, path, err)
	}
	data = data[:n]
	clip, err := pcm.FromLE16(data[:len(data)-len(data)%4])
	if err != nil {
		return nil, fmt.Errorf("decode vocal %q (%s): %w", alias, path, err)
	}
	return clip.Resample(stream.SampleRate(), c.sampleRate), nil
}
