// Package reply extracts the reply text, optional English translation and
// language tag from the tagged block the chat engine is asked to emit:
//
//	[LANG]: hi
//	[REPLY]: <reply in the user's language>
//	[EN]: <English translation>
//
// The engine is not guaranteed to follow the format. Anything that does not
// match falls back to plain text; parsing never fails.
package reply

import (
	"strings"
	"unicode"

	"github.com/Desarso/voicechat/language"
	"github.com/Desarso/voicechat/models"
)

// Block markers.
const (
	LangMarker  = "[LANG]:"
	ReplyMarker = "[REPLY]:"
	EnMarker    = "[EN]:"
)

// Parse turns a raw chat-engine reply into a models.ParsedReply.
func Parse(raw string) models.ParsedReply {
	tag := Tag(raw)

	body, ok := block(raw, ReplyMarker, EnMarker)
	if !ok {
		body = strings.TrimSpace(raw)
	}

	var translation *string
	if !language.IsEnglish(tag) {
		if en, ok := block(raw, EnMarker, ""); ok && en != "" {
			translation = &en
		}
	}

	return models.ParsedReply{
		ReplyText:       body,
		Translation:     translation,
		LanguageTag:     tag,
		TTSLanguageCode: language.TTSCode(tag),
	}
}

// Tag returns the lowercased run of letters following the [LANG]: marker, or
// the English tag when the marker is missing or empty. Markdown emphasis
// around the tag is skipped.
func Tag(raw string) string {
	i := strings.Index(raw, LangMarker)
	if i < 0 {
		return language.English
	}
	rest := strings.TrimLeftFunc(raw[i+len(LangMarker):], unicode.IsSpace)
	rest = strings.TrimLeft(rest, "*_`")
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	if end >= 0 {
		rest = rest[:end]
	}
	tag := strings.ToLower(rest)
	if tag == "" {
		return language.English
	}
	return tag
}

// block returns the trimmed text between start and the first stop marker that
// follows it (or the end of raw when stop is empty or absent).
func block(raw, start, stop string) (string, bool) {
	i := strings.Index(raw, start)
	if i < 0 {
		return "", false
	}
	body := raw[i+len(start):]
	if stop != "" {
		if j := strings.Index(body, stop); j >= 0 {
			body = body[:j]
		}
	}
	return strings.TrimSpace(body), true
}
