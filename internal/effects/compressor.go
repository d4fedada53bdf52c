package effects

import "math"

// CompressorSettings configures the bus compressor. Levels are in dB, times
// in milliseconds.
type CompressorSettings struct {
	ThresholdDB float32
	Ratio       float32
	AttackMs    float32
	ReleaseMs   float32
	MakeupDB    float32
}

func DefaultCompressor() CompressorSettings {
	return CompressorSettings{ThresholdDB: -12, Ratio: 3, AttackMs: 5, ReleaseMs: 80, MakeupDB: 2}
}

// Compressor is a stereo-linked compressor: one envelope follows the louder
// channel so gain reduction never shifts the stereo image.
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32 // coefficient
	release   float32 // coefficient
	makeup    float32
	env       float32
}

func NewCompressor(sampleRate int, s CompressorSettings) *Compressor {
	sr := float64(sampleRate)
	ratio := s.Ratio
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: dbToGain(s.ThresholdDB),
		ratio:     ratio,
		attack:    timeCoef(s.AttackMs, sr),
		release:   timeCoef(s.ReleaseMs, sr),
		makeup:    dbToGain(s.MakeupDB),
	}
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	level := float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
	if level > c.env {
		c.env += c.attack * (level - c.env)
	} else {
		c.env += c.release * (level - c.env)
	}
	g := c.gain() * c.makeup
	return l * g, r * g
}

func (c *Compressor) gain() float32 {
	if c.env <= c.threshold || c.threshold <= 0 {
		return 1
	}
	over := c.env / c.threshold
	return float32(math.Pow(float64(over), float64(1/c.ratio-1)))
}

func (c *Compressor) Reset() {
	c.env = 0
}

func dbToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func timeCoef(ms float32, sampleRate float64) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*sampleRate/1000)))
}
