package effects

import "math"

// EQSettings holds the gain of each band (1 = unity) and the two crossover
// frequencies in Hz.
type EQSettings struct {
	Low, Mid, High float32
	LowHz, HighHz  float32
}

func DefaultEQ() EQSettings {
	return EQSettings{Low: 1, Mid: 1, High: 1, LowHz: 300, HighHz: 3000}
}

// EQ3Band splits the signal with two one-pole filters and rebalances the
// low, mid and high bands.
type EQ3Band struct {
	gains    [3]float32
	lpAlpha  float32
	hpAlpha  float32
	low      [2]float32
	smoothed [2]float32
}

func NewEQ3Band(sampleRate int, s EQSettings) *EQ3Band {
	return &EQ3Band{
		gains:   [3]float32{s.Low, s.Mid, s.High},
		lpAlpha: onePoleAlpha(s.LowHz, sampleRate),
		hpAlpha: onePoleAlpha(s.HighHz, sampleRate),
	}
}

func (eq *EQ3Band) Process(l, r float32) (float32, float32) {
	return eq.band(0, l), eq.band(1, r)
}

func (eq *EQ3Band) band(ch int, in float32) float32 {
	eq.low[ch] += eq.lpAlpha * (in - eq.low[ch])
	eq.smoothed[ch] += eq.hpAlpha * (in - eq.smoothed[ch])
	low := eq.low[ch]
	high := in - eq.smoothed[ch]
	mid := in - low - high
	return low*eq.gains[0] + mid*eq.gains[1] + high*eq.gains[2]
}

func (eq *EQ3Band) Reset() {
	eq.low = [2]float32{}
	eq.smoothed = [2]float32{}
}

func onePoleAlpha(cutoff float32, sampleRate int) float32 {
	if cutoff <= 0 {
		return 1
	}
	rc := 1 / (2 * math.Pi * float64(cutoff))
	dt := 1 / float64(sampleRate)
	return float32(dt / (rc + dt))
}
