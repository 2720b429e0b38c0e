package models

// Conversation roles accepted in a turn history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message of the chat history sent to the chat engine.
// The caller supplies prior turns on every request; nothing is kept server side.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TranscriptionResult is what the speech-to-text stage hands to the chat stage.
type TranscriptionResult struct {
	Text         string `json:"transcript"`
	LanguageCode string `json:"language_code"` // "en-IN", "hi-IN", ... or a short tag
}

// ParsedReply is the structured view of a tagged chat-engine reply.
type ParsedReply struct {
	ReplyText       string
	Translation     *string // nil when the reply is already English
	LanguageTag     string  // short tag, e.g. "hi"
	TTSLanguageCode string  // locale handed to synthesis, e.g. "hi-IN"
}
