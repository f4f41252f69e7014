// Package language resolves query language codes.
package language

import (
	"strings"
	"unicode"
)

// Well-known codes.
const (
	Auto    = "auto"
	English = "en"
	Hindi   = "hi"
)

// scripts is checked in order; the first block present in the text wins.
// The Gujarati block maps to "mr" to stay compatible with the web client.
var scripts = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Bengali, "bn"},
	{unicode.Tamil, "ta"},
	{unicode.Telugu, "te"},
	{unicode.Gujarati, "mr"},
}

// Detect guesses the language from the script of text.
// Empty text yields Auto, text without an Indic script yields English.
func Detect(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Auto
	}
	for _, s := range scripts {
		for _, r := range trimmed {
			if unicode.Is(s.table, r) {
				return s.code
			}
		}
	}
	return English
}

// Normalize lower-cases and trims a language code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Resolve turns a client hint into a concrete code. Auto is resolved from text;
// an empty hint stays empty so callers can apply their own default.
func Resolve(hint, text string) string {
	code := Normalize(hint)
	if code == Auto {
		return Detect(text)
	}
	return code
}
