package models

// VoiceChatResponse is returned for a successful voice-chat round trip.
type VoiceChatResponse struct {
	Transcript  string  `json:"transcript"`
	ReplyText   string  `json:"reply_text"`
	Translation *string `json:"translation"`
	AudioBase64 string  `json:"audio_base64"`
}

// ErrorResponse is the body of every non-2xx HTTP response.
// The browser client reads the detail field.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// WSResultMessage is the websocket frame sent after a successful request.
type WSResultMessage struct {
	Type string `json:"type"` // "result"
	VoiceChatResponse
}

// WSErrorMessage is the websocket frame sent after a failed request.
type WSErrorMessage struct {
	Type   string `json:"type"` // "error"
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
