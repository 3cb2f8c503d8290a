// Package detector decides which supported language a question is written in.
package detector

import "github.com/dtnitsch/cbsl-assistant/models"

// Unicode blocks checked by Detect.
const (
	sinhalaFirst = '\u0D80'
	sinhalaLast  = '\u0DFF'
	tamilFirst   = '\u0B80'
	tamilLast    = '\u0BFF'
)

// Detect classifies text by script. Any Sinhala character wins, then any Tamil
// character; text with neither is English. It never fails and does no I/O.
func Detect(text string) models.Language {
	if ContainsSinhala(text) {
		return models.LanguageSinhala
	}
	if ContainsTamil(text) {
		return models.LanguageTamil
	}
	return models.LanguageEnglish
}

// ContainsSinhala reports whether text has at least one rune in the Sinhala block.
func ContainsSinhala(text string) bool {
	return containsRange(text, sinhalaFirst, sinhalaLast)
}

// ContainsTamil reports whether text has at least one rune in the Tamil block.
func ContainsTamil(text string) bool {
	return containsRange(text, tamilFirst, tamilLast)
}

func containsRange(text string, first, last rune) bool {
	for _, r := range text {
		if r >= first && r <= last {
			return true
		}
	}
	return false
}
