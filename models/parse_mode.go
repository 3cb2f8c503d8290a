package models

import (
	"fmt"
	"strings"
)

// ExtractMode selects how fetched HTML is reduced to plain text.
type ExtractMode string

const (
	// ExtractModeBody keeps every visible text node of the document body.
	ExtractModeBody ExtractMode = "body"
	// ExtractModeReadability keeps only the main article found by go-readability,
	// falling back to body extraction when none is found.
	ExtractModeReadability ExtractMode = "readability"
)

// ParseExtractMode resolves a mode name; the empty string means ExtractModeBody.
func ParseExtractMode(s string) (ExtractMode, error) {
	switch ExtractMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExtractModeBody:
		return ExtractModeBody, nil
	case ExtractModeReadability:
		return ExtractModeReadability, nil
	}
	return "", fmt.Errorf("unknown extract mode: %q", s)
}

// UnmarshalText lets YAML and flags use the mode names directly.
func (m *ExtractMode) UnmarshalText(text []byte) error {
	mode, err := ParseExtractMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
