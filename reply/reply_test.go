package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HindiWithTranslation(t *testing.T) {
	got := Parse("[LANG]: hi\n[REPLY]: X\n[EN]: Y")

	assert.Equal(t, "X", got.ReplyText)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "Y", *got.Translation)
	assert.Equal(t, "hi", got.LanguageTag)
	assert.Equal(t, "hi-IN", got.TTSLanguageCode)
}

func TestParse_EnglishDropsTranslation(t *testing.T) {
	got := Parse("[LANG]: en\n[REPLY]: Sure thing.\n[EN]: Sure thing.")

	assert.Equal(t, "Sure thing.", got.ReplyText)
	assert.Nil(t, got.Translation)
	assert.Equal(t, "en-IN", got.TTSLanguageCode)
}

func TestParse_NoMarkersFallsBackToRawText(t *testing.T) {
	got := Parse("  Just a plain answer.\n")

	assert.Equal(t, "Just a plain answer.", got.ReplyText)
	assert.Nil(t, got.Translation)
	assert.Equal(t, "en", got.LanguageTag)
	assert.Equal(t, "en-IN", got.TTSLanguageCode)
}

func TestParse_UnknownTagUsesEnglishCode(t *testing.T) {
	got := Parse("[LANG]: fr\n[REPLY]: Bonjour\n[EN]: Hello")

	assert.Equal(t, "fr", got.LanguageTag)
	assert.Equal(t, "en-IN", got.TTSLanguageCode)
	assert.Equal(t, "Bonjour", got.ReplyText)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "Hello", *got.Translation)
}

func TestParse_MultiLineBlocks(t *testing.T) {
	raw := "[LANG]: GU\n[REPLY]: line one\nline two\n\n[EN]: first\nsecond\n"
	got := Parse(raw)

	assert.Equal(t, "line one\nline two", got.ReplyText)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "first\nsecond", *got.Translation)
	assert.Equal(t, "gu-IN", got.TTSLanguageCode)
}

func TestParse_ReplyStopsAtFirstEnMarker(t *testing.T) {
	got := Parse("[LANG]: hi\n[REPLY]: a [EN]: b [EN]: c")

	assert.Equal(t, "a", got.ReplyText)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "b [EN]: c", *got.Translation)
}

func TestParse_ReplyWithoutLangMarker(t *testing.T) {
	got := Parse("[REPLY]: Hi! How can I help?")

	assert.Equal(t, "Hi! How can I help?", got.ReplyText)
	assert.Equal(t, "en", got.LanguageTag)
	assert.Nil(t, got.Translation)
}

func TestParse_EmptyTranslationIsNil(t *testing.T) {
	got := Parse("[LANG]: hi\n[REPLY]: नमस्ते\n[EN]:   ")

	assert.Equal(t, "नमस्ते", got.ReplyText)
	assert.Nil(t, got.Translation)
}

func TestTag(t *testing.T) {
	assert.Equal(t, "hi", Tag("[LANG]:hi[REPLY]: x"))
	assert.Equal(t, "en", Tag("[LANG]:   \n"))
	assert.Equal(t, "hi", Tag("prefix [LANG]:  HI  \n[REPLY]: x"))
}

func TestTag_StopsAtFirstNonLetter(t *testing.T) {
	assert.Equal(t, "hi", Tag("[LANG]: **hi**\n[REPLY]: x"))
	assert.Equal(t, "hi", Tag("[LANG]: hi.\n[REPLY]: x"))
	assert.Equal(t, "ta", Tag("[LANG]: `ta`, Tamil"))
	assert.Equal(t, "en", Tag("[LANG]: 42"))
}

func TestParse_EmphasizedTagKeepsLanguage(t *testing.T) {
	got := Parse("[LANG]: **hi**\n[REPLY]: नमस्ते\n[EN]: Hello")

	assert.Equal(t, "hi", got.LanguageTag)
	assert.Equal(t, "hi-IN", got.TTSLanguageCode)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "Hello", *got.Translation)
}
