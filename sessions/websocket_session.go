package sessions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Desarso/voicechat/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Run reads request frames until the client disconnects or ctx ends.
func (vs *VoiceSession) Run(ctx context.Context) error {
	conn := vs.Writer.Conn
	if vs.MaxFrameSize > 0 {
		conn.SetReadLimit(vs.MaxFrameSize)
	}

	// Closing the socket unblocks ReadMessage on server shutdown.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	vs.Logger.Printf("Session started")
	defer vs.Logger.Printf("Session ended")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return nil
			}
			vs.Logger.Printf("Read error: %v", err)
			return err
		}
		if msgType != websocket.TextMessage {
			err = vs.sendError(http.StatusBadRequest, "Expected a JSON text frame")
		} else {
			err = vs.handleFrame(ctx, data)
		}

		if err != nil {
			var sessErr *SessionError
			if errors.As(err, &sessErr) && !sessErr.Fatal {
				continue
			}
			return err
		}
	}
}

// handleFrame runs one request and writes its single reply frame.
func (vs *VoiceSession) handleFrame(ctx context.Context, data []byte) error {
	var req models.WSVoiceChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return vs.sendError(http.StatusBadRequest, "Invalid request frame")
	}

	audio, err := decodeAudio(req.AudioBase64)
	if err != nil {
		return vs.sendError(http.StatusBadRequest, "Invalid audio encoding")
	}

	requestID := uuid.NewString()
	ctx = models.WithRequestID(ctx, requestID)
	vs.Logger.Printf("Request %s: %d bytes of audio", requestID, len(audio))

	resp, err := vs.Handler.HandleVoiceChat(ctx, models.AudioInput{
		Data:        audio,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        int64(len(audio)),
	}, req.Messages.String())
	if err != nil {
		status := models.StatusCode(err)
		vs.Logger.Printf("Request %s failed with %d: %v", requestID, status, err)
		return vs.sendError(status, models.PublicMessage(err))
	}

	if err := vs.Writer.WriteResult(resp); err != nil {
		vs.Logger.Printf("Error writing result: %v", err)
		return &SessionError{Message: "failed to write result", Status: http.StatusInternalServerError, Fatal: true}
	}
	return nil
}

// sendError writes an error frame. A failed write ends the session.
func (vs *VoiceSession) sendError(status int, detail string) error {
	if err := vs.Writer.WriteError(status, detail); err != nil {
		vs.Logger.Printf("Error writing error frame: %v", err)
		return &SessionError{Message: "failed to write error frame", Status: status, Fatal: true}
	}
	return &SessionError{Message: detail, Status: status, Fatal: false}
}

// decodeAudio accepts standard base64, with or without a data: URL prefix.
func decodeAudio(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
