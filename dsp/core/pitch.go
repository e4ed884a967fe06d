package core

// A4 reference used by MIDIToFreq.
const (
	A4Note = 69
	A4Freq = 440.0
)

// MIDIToFreq converts a (possibly fractional) MIDI note number to Hz.
func MIDIToFreq(note float64) float64 {
	return A4Freq * mathPower2((note-A4Note)/12)
}

// SemitonesToRatio converts a semitone offset to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	if semitones == 0 {
		return 1
	}
	return mathPower2(semitones / 12)
}
