package sarvam

import "github.com/Desarso/voicechat/models"

// SpeechToTextResponse is the body returned by POST /speech-to-text.
type SpeechToTextResponse struct {
	RequestID    string `json:"request_id,omitempty"`
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code,omitempty"`
}

// ChatRequest is the body sent to POST /chat/completions.
type ChatRequest struct {
	Model    string                    `json:"model"`
	Messages []models.ConversationTurn `json:"messages"`
}

// ChatResponse is the subset of the chat completion body the relay reads.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Choices []ChatChoice `json:"choices"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextToSpeechRequest is the body sent to POST /text-to-speech.
type TextToSpeechRequest struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Speaker             string   `json:"speaker"`
	Model               string   `json:"model"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
}

// TextToSpeechResponse carries one base64 audio per input.
type TextToSpeechResponse struct {
	RequestID string   `json:"request_id,omitempty"`
	Audios    []string `json:"audios"`
}
