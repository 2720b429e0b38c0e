package sessions

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultMaxFrameSize bounds a single websocket request (base64 audio included)
// and the body of a multipart upload.
const DefaultMaxFrameSize = 16 << 20

// NewVoiceSession creates a new WebSocket voice session
func NewVoiceSession(sessionID string, conn *websocket.Conn, handler VoiceChatHandler) *VoiceSession {
	logger := log.New(os.Stdout, fmt.Sprintf("[WS %s] ", sessionID), log.LstdFlags)
	writer := &WebSocketWriter{
		Conn:         conn,
		Logger:       logger,
		WriteTimeout: 10 * time.Second,
	}

	return &VoiceSession{
		Handler:      handler,
		SessionID:    sessionID,
		Writer:       writer,
		Logger:       logger,
		MaxFrameSize: DefaultMaxFrameSize,
	}
}

// NewHTTPSession creates a new HTTP session
func NewHTTPSession(requestID string, handler VoiceChatHandler) *HTTPSession {
	logger := log.New(os.Stdout, fmt.Sprintf("[HTTP %s] ", requestID), log.LstdFlags)

	return &HTTPSession{
		Handler:       handler,
		RequestID:     requestID,
		Logger:        logger,
		MaxUploadSize: DefaultMaxFrameSize,
	}
}
