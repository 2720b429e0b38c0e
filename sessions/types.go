package sessions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Desarso/voicechat/models"
	"github.com/gorilla/websocket"
)

// VoiceChatHandler runs one voice-chat exchange.
type VoiceChatHandler interface {
	HandleVoiceChat(ctx context.Context, audio models.AudioInput, messagesJSON string) (models.VoiceChatResponse, error)
}

// SessionError represents errors that end or skip a websocket request
type SessionError struct {
	Message string
	Status  int
	Fatal   bool
}

func (e *SessionError) Error() string {
	return e.Message
}

// WebSocketWriter serialises all writes to a websocket connection
type WebSocketWriter struct {
	Conn         *websocket.Conn
	Logger       *log.Logger
	WriteTimeout time.Duration
	mu           sync.Mutex
}

func (w *WebSocketWriter) WriteResult(resp models.VoiceChatResponse) error {
	return w.write(models.WSResultMessage{Type: "result", VoiceChatResponse: resp})
}

func (w *WebSocketWriter) WriteError(status int, detail string) error {
	return w.write(models.WSErrorMessage{Type: "error", Status: status, Detail: detail})
}

func (w *WebSocketWriter) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.WriteTimeout > 0 {
		_ = w.Conn.SetWriteDeadline(time.Now().Add(w.WriteTimeout))
	}
	return w.Conn.WriteJSON(v)
}

// VoiceSession answers voice-chat frames on one websocket connection.
// Frames are handled one at a time; each gets exactly one reply frame.
type VoiceSession struct {
	Handler      VoiceChatHandler
	SessionID    string
	Writer       *WebSocketWriter
	Logger       *log.Logger
	MaxFrameSize int64
}

// HTTPSession handles one multipart voice-chat request
type HTTPSession struct {
	Handler   VoiceChatHandler
	RequestID string
	Logger    *log.Logger

	// MaxUploadSize bounds the whole request body, matching the websocket frame limit.
	MaxUploadSize int64
}
