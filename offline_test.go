package fluentscore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

const twinkle = "C C G G A A G/2 F F E E D D C/2"

// silentEngine records the calls it receives and renders nothing.
type silentEngine struct {
	calls []string
}

func (e *silentEngine) ProgramChange(channel, program int) {
	e.calls = append(e.calls, fmt.Sprintf("prog %d %d", channel, program))
}

func (e *silentEngine) NoteOn(channel, key, velocity int) {
	e.calls = append(e.calls, fmt.Sprintf("on %d %d", channel, key))
}

func (e *silentEngine) NoteOffAll(int, bool) {}

func (e *silentEngine) Render(left, right []float32) {
	clear(left)
	clear(right)
}

func TestRenderWithBuiltInSynth(t *testing.T) {
	buf, err := Render(twinkle, WithSampleRate(8000))
	require.NoError(t, err)
	// Four 2-second measures at 120 bpm.
	assert.Equal(t, 8*8000, buf.Len())
	assert.NotZero(t, buf.Peak())
	assert.LessOrEqual(t, buf.Peak(), float32(1))
}

func TestRenderIsDeterministic(t *testing.T) {
	score := "A:Piano [C/8 E/8 G/8 C5/8 G/2]\nKit:Standard Drum Kit [C2 D2 C2 D2]"
	a, err := Render(score, WithSampleRate(8000))
	require.NoError(t, err)
	b, err := Render(score, WithSampleRate(8000))
	require.NoError(t, err)
	assert.Equal(t, a.Left, b.Left)
	assert.Equal(t, a.Right, b.Right)
}

func TestRenderWithCustomEngine(t *testing.T) {
	engine := &silentEngine{}
	buf, err := Render("{Violin}[C E G C5]", WithSampleRate(1000), WithToneEngine(engine))
	require.NoError(t, err)
	assert.Equal(t, 2000, buf.Len())
	assert.Equal(t, []string{"prog 0 40", "on 0 60", "on 0 64", "on 0 67", "on 0 72"}, engine.calls)
}

func TestRenderMixesVocalClips(t *testing.T) {
	dir := t.TempDir()
	clip := &Buffer{Left: []float32{0.5, 0.5}, Right: []float32{0.5, 0.5}}
	f, err := os.Create(filepath.Join(dir, "hey.wav"))
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, clip, 1000))
	require.NoError(t, f.Close())

	score := "V1: hey.wav\nPiano [_ _ _ _]\nVocal [_ V1 _/2]"
	buf, err := Render(score, WithSampleRate(1000), WithToneEngine(&silentEngine{}), WithClipRoot(dir))
	require.NoError(t, err)
	assert.Equal(t, float32(0), buf.Left[499])
	assert.InDelta(t, 0.5, buf.Left[500], 1e-3)
	assert.InDelta(t, 0.5, buf.Right[501], 1e-3)
	assert.Equal(t, float32(0), buf.Left[502])

	_, err = Render("V1: gone.wav\nVocal [V1/1]", WithSampleRate(1000), WithToneEngine(&silentEngine{}), WithClipRoot(dir))
	assert.Error(t, err)
}

func TestRenderAppliesMasterBus(t *testing.T) {
	buf, err := Render(twinkle,
		WithSampleRate(8000),
		WithEQ(DefaultEQ()),
		WithCompressor(DefaultCompressor()),
		WithEcho(DefaultEcho()),
		WithReverb(DefaultReverb()),
		WithNormalize(0.8))
	require.NoError(t, err)
	assert.InDelta(t, 0.8, buf.Peak(), 1e-5)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(twinkle, WithSampleRate(0))
	assert.Error(t, err)

	_, err = Render("[C/1 C/1]")
	var mismatch *BeatCountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 4.0, mismatch.Expected)
	assert.Equal(t, 8.0, mismatch.Actual)

	_, err = Render("V1: a.wav\nVocal [V2/1]")
	var unknown *UnknownSymbolError
	assert.True(t, errors.As(err, &unknown))
}

func TestWriteWAV(t *testing.T) {
	buf, err := Render("[C/1]", WithSampleRate(8000))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, buf, 8000))
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()
	d := wav.NewDecoder(in)
	require.True(t, d.IsValidFile())
	pcm, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, pcm.Format.NumChannels)
	assert.Equal(t, 8000, pcm.Format.SampleRate)
	assert.Equal(t, buf.Len()*2, len(pcm.Data))
}

func TestWriteWAVFloat(t *testing.T) {
	buf := &Buffer{Left: []float32{0.25}, Right: []float32{-0.25}}
	var out bytes.Buffer
	require.NoError(t, WriteWAVFloat(&out, buf, 44100))
	assert.Equal(t, 44+8, out.Len())
	assert.Equal(t, "RIFF", out.String()[:4])
}

func TestExportMIDI(t *testing.T) {
	s, err := Compile("A:Piano [C/2 E/2]\nB:Guitar [G G G G]\nV1: a.wav\nVocal [V1/1]")
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, ExportMIDI(&out, s))
	file, err := smf.ReadFrom(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Len(t, file.Tracks, 3)
}
