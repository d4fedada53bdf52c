package names

// generalMIDIPrograms lists the General MIDI level 1 melodic programs by
// program number.
var generalMIDIPrograms = [128]string{
	"Acoustic Grand Piano", "Bright Acoustic Piano", "Electric Grand Piano", "Honky-tonk Piano",
	"Rhodes Piano", "Chorused Piano", "Harpsichord", "Clavinet",
	"Celesta", "Glockenspiel", "Music Box", "Vibraphone",
	"Marimba", "Xylophone", "Tubular Bells", "Dulcimer",
	"Hammond Organ", "Percussive Organ", "Rock Organ", "Church Organ",
	"Reed Organ", "Accordion", "Harmonica", "Tango Accordion",
	"Acoustic Guitar 1", "Acoustic Guitar 2", "Electric Guitar 1", "Electric Guitar 2",
	"Electric Guitar 3", "Overdriven Guitar", "Distortion Guitar", "Guitar Harmonics",
	"Acoustic Bass", "Electric Bass 1", "Electric Bass 2", "Fretless Bass",
	"Slap Bass 1", "Slap Bass 2", "Synth Bass 1", "Synth Bass 2",
	"Violin", "Viola", "Cello", "Contrabass",
	"Tremolo Strings", "Pizzicato Strings", "Orchestral Harp", "Timpani",
	"String Ensemble 1", "String Ensemble 2", "Synth Strings 1", "Synth Strings 2",
	"Choir Aahs", "Voice Oohs", "Synth Voice", "Orchestra Hit",
	"Trumpet", "Trombone", "Tuba", "Muted Trumpet",
	"French Horn", "Brass Section", "Synth Brass 1", "Synth Brass 2",
	"Soprano Sax", "Alto Sax", "Tenor Sax", "Baritone Sax",
	"Oboe", "English Horn", "Bassoon", "Clarinet",
	"Piccolo", "Flute", "Recorder", "Pan Flute",
	"Bottle Blow", "Shakuhachi", "Whistle", "Ocarina",
	"Lead 1", "Lead 2", "Lead 3", "Lead 4",
	"Lead 5", "Lead 6", "Lead 7", "Lead 8",
	"Pad 1", "Pad 2", "Pad 3", "Pad 4",
	"Pad 5", "Pad 6", "Pad 7", "Pad 8",
	"FX 1", "FX 2", "FX 3", "FX 4",
	"FX 5", "FX 6", "FX 7", "FX 8",
	"Sitar", "Banjo", "Shamisen", "Koto",
	"Kalimba", "Bagpipe", "Fiddle", "Shana",
	"Tinkle Bell", "Agogo", "Steel Drums", "Woodblock",
	"Taiko Drum", "Melodic Tom", "Synth Drum", "Reverse Cymbal",
	"Guitar Fret Noise", "Breath Noise", "Seashore", "Bird Tweet",
	"Telephone Ring", "Helicopter", "Applause", "Gunshot",
}

// instrumentClasses maps each General MIDI family name to its first program.
var instrumentClasses = []struct {
	name    string
	program int
}{
	{"Piano", 0},
	{"Chromatic Percussion", 8},
	{"Organ", 16},
	{"Guitar", 24},
	{"Bass", 32},
	{"Strings", 40},
	{"Ensemble", 48},
	{"Brass", 56},
	{"Reed", 64},
	{"Pipe", 72},
	{"Synth Lead", 80},
	{"Synth Pad", 88},
	{"Synth Effects", 96},
	{"Ethnic", 104},
	{"Percussive", 112},
	{"Sound Effects", 120},
}

var drumKits = []struct {
	name string
	id   int
}{
	{"Standard Drum Kit", StandardDrumKit},
	{"Room Drum Kit", RoomDrumKit},
	{"Power Drum Kit", PowerDrumKit},
	{"Electric Drum Kit", ElectricDrumKit},
	{"TR-808 Drum Kit", TR808DrumKit},
	{"Jazz Drum Kit", JazzDrumKit},
	{"Brush Drum Kit", BrushDrumKit},
	{"Orchestral Drum Kit", OrchestralDrumKit},
	{"Fix Room Drum Kit", FixRoomDrumKit},
	{"MT-32 Drum Kit", MT32DrumKit},
}
