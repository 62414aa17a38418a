// Package lang normalises language tags and lists the languages offered by the API.
package lang

import (
	"sort"
	"strings"

	"translingo/internal/models"
)

// TraditionalChinese is the one regional code kept by Normalize; every
// other tag is reduced to its base language.
const TraditionalChinese = "zh-tw"

// Language is a selectable language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var names = map[string]string{
	"ar":    "Arabic",
	"bg":    "Bulgarian",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"es":    "Spanish",
	"et":    "Estonian",
	"fi":    "Finnish",
	"fr":    "French",
	"hi":    "Hindi",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"sv":    "Swedish",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"zh":    "Chinese",
	"zh-tw": "Chinese (Traditional)",
}

// Normalize converts a caller tag to the code the providers use:
//   - "EN"      -> "en"
//   - "fr-CA"   -> "fr"
//   - "pt_BR"   -> "pt"
//   - "zh-Hant" -> "zh-tw"
//
// Regions are dropped except for Traditional Chinese (Hant script, or TW,
// HK and MO regions), which would otherwise be served as Simplified.
// "auto" is kept as is; an empty tag stays empty.
func Normalize(tag string) string {
	code := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
	if isTraditionalChinese(code) {
		return TraditionalChinese
	}
	if idx := strings.IndexByte(code, '-'); idx >= 0 {
		code = code[:idx]
	}
	return code
}

func isTraditionalChinese(code string) bool {
	if code == "zt" { // LibreTranslate
		return true
	}
	if !strings.HasPrefix(code, "zh-") {
		return false
	}
	parts := strings.Split(code[len("zh-"):], "-")
	for _, part := range parts {
		if part == "hans" {
			return false
		}
	}
	for _, part := range parts {
		switch part {
		case "hant", "tw", "hk", "mo":
			return true
		}
	}
	return false
}

// NormalizeSource is Normalize with an empty tag mapped to "auto".
func NormalizeSource(tag string) string {
	code := Normalize(tag)
	if code == "" {
		return models.AutoLanguage
	}
	return code
}

// Name returns the English name of code, or code itself when unknown.
func Name(code string) string {
	if n, ok := names[code]; ok {
		return n
	}
	return code
}

// Supported returns the offered languages sorted by code.
func Supported() []Language {
	out := make([]Language, 0, len(names))
	for code, name := range names {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
