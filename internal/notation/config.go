package notation

import "github.com/cbegin/fluentscore-go/internal/names"

type ParserConfig struct {
	DefaultBPM             int
	DefaultBeatsPerMeasure int
	DefaultBeatSize        int
	DefaultDuration        int
	DefaultVelocity        int
	DefaultInstrument      int
	// MultiInstrumentSentinel, as the first content line, forces
	// multi-instrument mode.
	MultiInstrumentSentinel string
	BeatTolerance           float64
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DefaultBPM:              120,
		DefaultBeatsPerMeasure:  4,
		DefaultBeatSize:         4,
		DefaultDuration:         4,
		DefaultVelocity:         100,
		DefaultInstrument:       names.AcousticGrandPiano,
		MultiInstrumentSentinel: "Mode: Multi-Instrument",
		BeatTolerance:           1e-9,
	}
}
