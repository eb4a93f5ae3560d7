package midi1

import "fmt"

var noteNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// NoteName returns the note name with octave for a MIDI key number,
// middle C (60) being C4.
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key/12)-1)
}
