package announcer

import "vintagefm/model"

// IntroLine is the station identification spoken before some local tracks.
const IntroLine = "You are tuned to Vintage F M, keeping the good sounds alive."

// OutroLines are the phrases one of which closes every track.
var OutroLines = []string{
	"That was another fine number here on Vintage F M.",
	"Stay with us, more melodies are on the way.",
	"Vintage F M: your station for timeless tunes.",
}

// UpNextLine announces an entry that has no audio of its own.
func UpNextLine(t model.ResolvedTrack) string {
	if t.Artist == "" {
		return "Up next, " + t.Title + "."
	}
	return "Up next, " + t.Title + " - " + t.Artist + "."
}

// OutroLine picks an outro; intn must return a value in [0, n).
func OutroLine(intn func(n int) int) string {
	return OutroLines[intn(len(OutroLines))]
}

// IsOutro reports whether text is one of OutroLines.
func IsOutro(text string) bool {
	for _, line := range OutroLines {
		if line == text {
			return true
		}
	}
	return false
}
