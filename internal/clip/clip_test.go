package clip

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/fluentscore-go/internal/pcm"
)

func writeClip(t *testing.T, dir, name string, rate int, value float32, frames int) {
	t.Helper()
	buf := pcm.NewBuffer(frames)
	for i := range buf.Left {
		buf.Left[i] = value
		buf.Right[i] = -value
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, buf.WriteWAV16(f, rate))
}

func TestDecoderOpensWAVRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	writeClip(t, dir, "Vocal1.WAV", 8000, 0.5, 400)

	s, err := Decoder{Root: dir}.Open("Vocal1.WAV")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 8000, s.SampleRate())
	assert.Equal(t, int64(400*4), s.Length())

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	got, err := pcm.FromLE16(data)
	require.NoError(t, err)
	require.Equal(t, 400, got.Len())
	assert.InDelta(t, 0.5, got.Left[10], 1e-3)
	assert.InDelta(t, -0.5, got.Right[10], 1e-3)
}

func TestDecoderAcceptsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	writeClip(t, dir, "a.wav", 11025, 0.25, 10)

	s, err := Decoder{Root: "/nowhere"}.Open(filepath.Join(dir, "a.wav"))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestDecoderErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Decoder{Root: dir}.Open("notes.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Decoder{Root: dir}.Open("missing.wav")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.wav"), []byte("not a riff file"), 0o644))
	_, err = Decoder{Root: dir}.Open("junk.wav")
	assert.Error(t, err)
}
