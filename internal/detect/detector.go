// Package detect guesses a language from the Unicode scripts present in a text.
package detect

import "unicode"

// DefaultLanguage is returned when no script in the priority list matches.
const DefaultLanguage = "en"

type script struct {
	code  string
	match func(rune) bool
}

// Checked in order; the first script with at least one rune in the text wins.
var scripts = []script{
	{code: "zh", match: func(r rune) bool { return r >= 0x4E00 && r <= 0x9FFF }},
	{code: "ja", match: func(r rune) bool { return r >= 0x3040 && r <= 0x30FF }},
	{code: "ko", match: func(r rune) bool { return r >= 0xAC00 && r <= 0xD7AF }},
	{code: "ru", match: func(r rune) bool { return r >= 0x0400 && r <= 0x04FF }},
	{code: "ar", match: func(r rune) bool { return r >= 0x0600 && r <= 0x06FF }},
	{code: "en", match: func(r rune) bool { return r < unicode.MaxASCII && unicode.IsLetter(r) }},
}

// Language returns the best-guess code for text. It never fails.
func Language(text string) string {
	for _, s := range scripts {
		for _, r := range text {
			if s.match(r) {
				return s.code
			}
		}
	}
	return DefaultLanguage
}

// Heuristic adapts Language to the detector interfaces used by the resolver
// and the HTTP handler.
type Heuristic struct{}

// Detect implements the resolver's source detector.
func (Heuristic) Detect(text string) string {
	return Language(text)
}
