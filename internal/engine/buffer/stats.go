package buffer

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

// Stats summarizes the buffer for the editor toolbar.
type Stats struct {
	Words          int `json:"words" msgpack:"words"`
	Characters     int `json:"characters" msgpack:"characters"`
	ReadingMinutes int `json:"readingMinutes" msgpack:"readingMinutes"`
}

// Stats computes word, character and reading-time figures for the buffer.
func (b *Buffer) Stats() Stats {
	return ComputeStats(b.text)
}

// ComputeStats computes Stats for arbitrary text.
// Words are Unicode word segments containing at least one letter or digit.
func ComputeStats(text string) Stats {
	words := 0
	state := -1
	rest := text
	var word string
	for len(rest) > 0 {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if isWord(word) {
			words++
		}
	}

	return Stats{
		Words:          words,
		Characters:     len([]rune(text)),
		ReadingMinutes: (words + WordsPerMinute - 1) / WordsPerMinute,
	}
}

func isWord(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
