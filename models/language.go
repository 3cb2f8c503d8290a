package models

import (
	"fmt"
	"strings"
)

// Language is the ISO-639-1 code of a supported question language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSinhala Language = "si"
	LanguageTamil   Language = "ta"
)

// Name returns the English name of the language, as used in model instructions.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageSinhala:
		return "Sinhala"
	case LanguageTamil:
		return "Tamil"
	default:
		return string(l)
	}
}

// IsSupported reports whether l is one of the languages the assistant answers in.
func (l Language) IsSupported() bool {
	switch l {
	case LanguageEnglish, LanguageSinhala, LanguageTamil:
		return true
	}
	return false
}

// ParseLanguage accepts a language code or English name, case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, nil
	case "si", "sinhala":
		return LanguageSinhala, nil
	case "ta", "tamil":
		return LanguageTamil, nil
	}
	return "", fmt.Errorf("unsupported language: %q", s)
}
