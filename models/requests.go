package models

import "encoding/json"

// Defaults applied to uploads that arrive without metadata.
const (
	DefaultAudioFilename    = "audio.webm"
	DefaultAudioContentType = "audio/webm"
)

// AudioInput is the recorded clip received from the client.
type AudioInput struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64 // size reported by the upload, may be 0 for streamed parts
}

// FilenameOrDefault returns the upload filename, falling back to DefaultAudioFilename.
func (a AudioInput) FilenameOrDefault() string {
	if a.Filename == "" {
		return DefaultAudioFilename
	}
	return a.Filename
}

// ContentTypeOrDefault returns the upload MIME type, falling back to DefaultAudioContentType.
func (a AudioInput) ContentTypeOrDefault() string {
	if a.ContentType == "" || a.ContentType == "application/octet-stream" {
		return DefaultAudioContentType
	}
	return a.ContentType
}

// WSVoiceChatRequest is a single voice-chat request sent as a websocket text frame.
// Messages is kept raw so it goes through the same validation as the multipart field.
type WSVoiceChatRequest struct {
	AudioBase64 string   `json:"audio_base64"`
	Filename    string   `json:"filename,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	Messages    RawTurns `json:"messages,omitempty"`
}

// RawTurns holds the undecoded JSON of a turn list.
type RawTurns []byte

// UnmarshalJSON keeps the raw bytes so malformed histories surface as bad requests later.
func (r *RawTurns) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// String returns the raw JSON, or "[]" when nothing was sent.
// A JSON string is unwrapped so clients may send the same text they would put in the form field.
func (r RawTurns) String() string {
	if len(r) == 0 || string(r) == "null" {
		return "[]"
	}
	if r[0] == '"' {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			return s
		}
	}
	return string(r)
}
