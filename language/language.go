// Package language holds the fixed lookup tables between short language tags,
// synthesis locale codes and the display names used in prompt annotations.
package language

import "strings"

// Tags understood by the chat prompt and the synthesis engine.
const (
	English  = "en"
	Hindi    = "hi"
	Gujarati = "gu"
)

// DefaultCode is the synthesis locale used for any tag outside the table.
const DefaultCode = "en-IN"

// DefaultName is the display name used for any locale outside the table.
const DefaultName = "English"

var tagToCode = map[string]string{
	English:  "en-IN",
	Hindi:    "hi-IN",
	Gujarati: "gu-IN",
}

var codeToName = map[string]string{
	"en-in": "English",
	"hi-in": "Hindi",
	"gu-in": "Gujarati",
}

// TTSCode maps a short tag ("hi") to the synthesis locale ("hi-IN").
// Unknown tags resolve to DefaultCode.
func TTSCode(tag string) string {
	if code, ok := tagToCode[normalize(tag)]; ok {
		return code
	}
	return DefaultCode
}

// DisplayName maps a detected locale ("gu-IN") to the name injected into the
// user turn ("Gujarati"). A bare short tag is accepted too. Unknown values
// resolve to DefaultName.
func DisplayName(code string) string {
	c := normalize(code)
	if name, ok := codeToName[c]; ok {
		return name
	}
	if full, ok := tagToCode[c]; ok {
		return codeToName[strings.ToLower(full)]
	}
	return DefaultName
}

// IsEnglish reports whether a short tag denotes English.
func IsEnglish(tag string) bool {
	return normalize(tag) == English
}

// ISOCode returns the bare language part of a locale ("hi-IN" -> "hi").
// Providers that take ISO 639-1 codes use it.
func ISOCode(code string) string {
	c := normalize(code)
	if i := strings.IndexAny(c, "-_"); i > 0 {
		return c[:i]
	}
	return c
}

// Supported lists the short tags with a dedicated synthesis locale.
func Supported() []string {
	return []string{English, Hindi, Gujarati}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
