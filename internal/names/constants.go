package names

// Pitch markers that are not MIDI keys.
const (
	RestMarker  = -1
	VocalMarker = -2
)

// Well-known MIDI keys.
const (
	LowestKey    = 21 // A0
	HighestKey   = 108
	MiddleC      = 60
	ConcertPitch = 69
)

// Instrument ids. Non-negative ids are General MIDI programs; negative ids are
// handled specially by the compositor.
const (
	AcousticGrandPiano = 0

	// Vocal marks a pre-recorded clip track; the tone engine never sees it.
	Vocal = -1

	// DrumKitOffset is subtracted from a kit's bank number to form its id,
	// so every drum kit id is <= DrumKitOffset.
	DrumKitOffset = -2

	StandardDrumKit   = DrumKitOffset - 0
	RoomDrumKit       = DrumKitOffset - 8
	PowerDrumKit      = DrumKitOffset - 16
	ElectricDrumKit   = DrumKitOffset - 24
	TR808DrumKit      = DrumKitOffset - 25
	JazzDrumKit       = DrumKitOffset - 32
	BrushDrumKit      = DrumKitOffset - 40
	OrchestralDrumKit = DrumKitOffset - 48
	FixRoomDrumKit    = DrumKitOffset - 49
	MT32DrumKit       = DrumKitOffset - 127
)

// DrumChannel is the General MIDI percussion channel (channel 10, zero based).
const DrumChannel = 9

// IsDrumKit reports whether id names a drum kit rather than a melodic program.
func IsDrumKit(id int) bool { return id <= DrumKitOffset }

// DrumKitProgram returns the program number a drum kit id selects on the
// percussion channel.
func DrumKitProgram(id int) int {
	p := id - DrumKitOffset
	if p < 0 {
		p = -p
	}
	return p
}

// IsRestToken reports whether tok is one of the reserved rest spellings.
func IsRestToken(tok string) bool { return tok == "_" || tok == "-" }
