package sequencer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/fluentscore-go/internal/score"
	"github.com/cbegin/fluentscore-go/internal/timing"
)

// recordingEngine logs every call and fills rendered spans with fill.
type recordingEngine struct {
	calls    []string
	rendered int
	fill     float32
}

func (e *recordingEngine) ProgramChange(channel, program int) {
	e.calls = append(e.calls, fmt.Sprintf("prog %d %d", channel, program))
}

func (e *recordingEngine) NoteOn(channel, key, velocity int) {
	e.calls = append(e.calls, fmt.Sprintf("on %d %d %d", channel, key, velocity))
}

func (e *recordingEngine) NoteOffAll(channel int, withRelease bool) {
	if withRelease {
		e.calls = append(e.calls, fmt.Sprintf("off %d", channel))
	}
}

func (e *recordingEngine) Render(left, right []float32) {
	e.calls = append(e.calls, fmt.Sprintf("render %d", len(left)))
	e.rendered += len(left)
	for i := range left {
		left[i] = e.fill
		right[i] = e.fill
	}
}

func TestSessionEnforcesCallOrder(t *testing.T) {
	engine := &recordingEngine{}
	s := NewSession(engine)
	var orderErr *OrderError

	require.True(t, errors.As(s.ProgramChange(0, 1), &orderErr))
	require.True(t, errors.As(s.NoteOn(0, 60, 100), &orderErr))
	require.True(t, errors.As(s.Render(nil, nil), &orderErr))

	require.NoError(t, s.BeginMeasure())
	require.NoError(t, s.ProgramChange(0, 1))
	require.NoError(t, s.NoteOn(0, 60, 100))
	assert.True(t, errors.As(s.ProgramChange(0, 2), &orderErr))
	assert.Equal(t, "ProgramChange", orderErr.Op)
	assert.Equal(t, "notes", orderErr.State)

	require.NoError(t, s.Render(make([]float32, 4), make([]float32, 4)))
	require.NoError(t, s.BeginMeasure())
	require.NoError(t, s.ProgramChange(0, 2))

	s.Close()
	assert.True(t, errors.As(s.BeginMeasure(), &orderErr))
	assert.Equal(t, []string{"prog 0 1", "on 0 60 100", "render 4", "prog 0 2"}, engine.calls)
}

func TestSessionRejectsBadArguments(t *testing.T) {
	s := NewSession(&recordingEngine{})
	require.NoError(t, s.BeginMeasure())
	assert.Error(t, s.ProgramChange(16, 0))
	assert.Error(t, s.NoteOn(0, 128, 100))
	assert.Error(t, s.Render(make([]float32, 2), make([]float32, 3)))
}

func TestCompositorCallSequence(t *testing.T) {
	s := mustParse(t, "A:Piano [C/2 E/2]\nB:Guitar [G _ G|C5 G]")
	engine := &recordingEngine{}
	buf, err := NewCompositor(engine, 1000, Options{}).Render(s)
	require.NoError(t, err)
	assert.Equal(t, 2000, buf.Len())
	assert.Equal(t, []string{
		"prog 0 0", "prog 1 24",
		"off 0", "on 0 60 100", "off 1", "on 1 67 100", "render 500",
		"off 1", "render 500",
		"off 0", "on 0 64 100", "off 1", "on 1 67 100", "on 1 72 100", "render 500",
		"off 1", "on 1 67 100", "render 500",
	}, engine.calls)
}

func TestCompositorDrumsUseChannelNine(t *testing.T) {
	s := mustParse(t, "Kit:TR-808 Drum Kit [C2 D2 C2 D2]\nPiano [C/1]")
	engine := &recordingEngine{}
	_, err := NewCompositor(engine, 1000, Options{}).Render(s)
	require.NoError(t, err)
	assert.Equal(t, "prog 9 25", engine.calls[0])
	assert.Equal(t, "prog 0 0", engine.calls[1])
	assert.Contains(t, engine.calls, "on 9 36 100")
}

func TestCompositorCoversTimelineWithoutGaps(t *testing.T) {
	// 70 bpm at 1 kHz gives measures of 3428.57 samples.
	s := mustParse(t, "(70) [C/8 C/8 C/8 C/8 C/2]\n[C C C C]\n[C/16 C/16 C/8 C/4 C/2]")
	engine := &recordingEngine{fill: 1}
	buf, err := NewCompositor(engine, 1000, Options{}).Render(s)
	require.NoError(t, err)

	grid := timing.Grid{SampleRate: 1000, BeatsPerMeasure: 4, BeatSize: 4, BPM: 70}
	end := grid.MeasureStart(3)
	assert.Equal(t, 11000, buf.Len())
	assert.Equal(t, end, engine.rendered)
	for i := 0; i < buf.Len(); i++ {
		want := float32(0)
		if i < end {
			want = 1
		}
		if buf.Left[i] != want || buf.Right[i] != want {
			t.Fatalf("sample %d = %v/%v, want %v", i, buf.Left[i], buf.Right[i], want)
		}
	}
}

type memClip struct {
	*bytes.Reader
	rate int
	size int64
}

func (c *memClip) Length() int64   { return c.size }
func (c *memClip) SampleRate() int { return c.rate }
func (c *memClip) Close() error    { return nil }

type memDecoder struct {
	rate   int
	frames int
	value  int16
	opened []string
}

func (d *memDecoder) Open(path string) (ClipStream, error) {
	if path == "missing.wav" {
		return nil, errors.New("no such file")
	}
	d.opened = append(d.opened, path)
	data := make([]byte, d.frames*4)
	for i := 0; i < d.frames*2; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(d.value))
	}
	return &memClip{Reader: bytes.NewReader(data), rate: d.rate, size: int64(len(data))}, nil
}

func TestCompositorMixesVocalsAtBeatOffset(t *testing.T) {
	s := mustParse(t, "V1: a.wav\nPiano [C C C C]\nVocal [_ _ _ V1]\nVocal [V1/2 _/2]")
	decoder := &memDecoder{rate: 1000, frames: 1000, value: 16384}
	buf, err := NewCompositor(&recordingEngine{}, 1000, Options{Clips: decoder}).Render(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wav"}, decoder.opened, "each clip is decoded once")

	want := float32(16384) / 32767
	assert.Equal(t, float32(0), buf.Left[1499])
	// First clip starts at beat 3 and runs into measure 2, where the second
	// occurrence starts on top of it.
	assert.InDelta(t, want, buf.Left[1500], 1e-6)
	assert.InDelta(t, want, buf.Left[1999], 1e-6)
	assert.InDelta(t, 2*want, buf.Right[2000], 1e-6)
	assert.InDelta(t, 2*want, buf.Right[2499], 1e-6)
	assert.InDelta(t, want, buf.Left[2500], 1e-6)
	assert.Equal(t, float32(0), buf.Left[3000])
}

func TestCompositorClampsVocalToBuffer(t *testing.T) {
	s := mustParse(t, "V1: long.wav\nVocal [_/2 _ V1]")
	decoder := &memDecoder{rate: 500, frames: 5000, value: 32767}
	buf, err := NewCompositor(&recordingEngine{}, 1000, Options{Clips: decoder}).Render(s)
	require.NoError(t, err)
	assert.Equal(t, 2000, buf.Len())
	assert.Equal(t, float32(0), buf.Left[1499])
	assert.InDelta(t, 1, buf.Left[1500], 1e-6)
	assert.InDelta(t, 1, buf.Left[1999], 1e-6)
}

func TestCompositorVocalErrors(t *testing.T) {
	s := mustParse(t, "V1: a.wav\nVocal [V1/1]")
	_, err := NewCompositor(&recordingEngine{}, 1000, Options{}).Render(s)
	assert.True(t, errors.Is(err, ErrMissingVocal))

	undeclared := &score.Score{
		BeatsPerMeasure: 4, BeatSize: 4, BPM: 120,
		Vocals:   map[string]string{},
		Measures: s.Measures,
	}
	_, err = NewCompositor(&recordingEngine{}, 1000, Options{Clips: &memDecoder{}}).Render(undeclared)
	assert.True(t, errors.Is(err, ErrMissingVocal))

	missing := mustParse(t, "V1: missing.wav\nVocal [V1/1]")
	_, err = NewCompositor(&recordingEngine{}, 1000, Options{Clips: &memDecoder{}}).Render(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.wav")
}

func TestCompositorTooManyChannelsFailsBeforeRendering(t *testing.T) {
	text := ""
	for i := 0; i < 16; i++ {
		text += fmt.Sprintf("G%d:Piano [C/1]\n", i)
	}
	engine := &recordingEngine{}
	_, err := NewCompositor(engine, 1000, Options{}).Render(mustParse(t, text))
	assert.True(t, errors.Is(err, ErrTooManyChannels))
	assert.Empty(t, engine.calls)
}

func BenchmarkCompositorRender(b *testing.B) {
	s := mustParse(b, "(150) A:Piano [C/16 D/16 E/16 F/16 G/16 A/16 B/16 C5/16 C/2]\nB:Guitar [C/2 G/2]")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewCompositor(&recordingEngine{}, 48000, Options{}).Render(s); err != nil {
			b.Fatal(err)
		}
	}
}
