package pcm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV16 encodes the buffer as a 16-bit stereo PCM WAV file.
func (b *Buffer) WriteWAV16(out io.WriteSeeker, sampleRate int) error {
	const bitDepth = 16
	intBuffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, b.Len()*2),
		SourceBitDepth: bitDepth,
	}
	for i, s := range b.ToPCM16() {
		intBuffer.Data[i] = int(s)
	}
	e := wav.NewEncoder(out, sampleRate, bitDepth, 2, 1)
	if err := e.Write(intBuffer); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}

// EncodeWAVFloat32LE encodes interleaved float samples as an IEEE float WAV.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	blockAlign := channels * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // WAVE_FORMAT_IEEE_FLOAT
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
