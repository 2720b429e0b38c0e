// Package elevenlabs synthesizes a reply through the ElevenLabs stream-input
// websocket. The whole reply is sent at once and the returned audio chunks are
// joined, so callers get a single base64 clip like the Sarvam endpoint returns.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Desarso/voicechat/language"
	"github.com/Desarso/voicechat/models"
	"github.com/gorilla/websocket"
)

const (
	DefaultModelID      = "eleven_flash_v2_5"
	DefaultOutputFormat = "mp3_44100_128"
	DefaultTimeout      = 30 * time.Second
)

// Synthesizer implements the synthesis stage against ElevenLabs.
type Synthesizer struct {
	APIKey       string
	VoiceID      string
	ModelID      string
	BaseURL      string
	OutputFormat string
	Timeout      time.Duration
	Logger       *log.Logger
}

// NewSynthesizer validates credentials and applies defaults.
func NewSynthesizer(apiKey, voiceID, modelID string, timeout time.Duration) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, &models.ConfigurationError{Key: "ELEVENLABS_API_KEY"}
	}
	if voiceID == "" {
		return nil, &models.ConfigurationError{Key: "ELEVENLABS_VOICE_ID"}
	}
	if modelID == "" {
		modelID = DefaultModelID
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{
		APIKey:       apiKey,
		VoiceID:      voiceID,
		ModelID:      modelID,
		OutputFormat: DefaultOutputFormat,
		Timeout:      timeout,
		Logger:       log.New(os.Stdout, "[elevenlabs] ", log.LstdFlags),
	}, nil
}

// --- Outgoing messages (client -> ElevenLabs) ---

type initializeConnection struct {
	Text string `json:"text"`
}

type sendText struct {
	Text  string `json:"text"`
	Flush bool   `json:"flush,omitempty"`
}

// --- Incoming messages (ElevenLabs -> client) ---

type incomingMessage struct {
	Audio   string `json:"audio"`
	IsFinal *bool  `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Synthesize renders text in languageCode ("hi-IN" or "hi") and returns base64 audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := BuildURL(ConnectConfig{
		BaseURL:      s.BaseURL,
		VoiceID:      s.VoiceID,
		ModelID:      s.ModelID,
		LanguageCode: language.ISOCode(languageCode),
		OutputFormat: s.OutputFormat,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build elevenlabs url: %w", err)
	}

	headers := http.Header{}
	headers.Set("xi-api-key", s.APIKey)

	d := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := d.DialContext(ctx, u, headers)
	if err != nil {
		return "", s.dialError(resp, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	// Closing the socket unblocks ReadMessage when the caller goes away.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for _, msg := range []any{
		initializeConnection{Text: " "},
		sendText{Text: strings.ReplaceAll(text, "\r\n", "\n") + " ", Flush: true},
		sendText{Text: ""}, // end of input
	} {
		if err := conn.WriteJSON(msg); err != nil {
			s.logf("write error: %v", err)
			return "", models.NewRemoteUnavailableError(models.StageTTS, err)
		}
	}

	var audio bytes.Buffer
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				if closeErr.Code == websocket.CloseNormalClosure {
					break
				}
				s.logf("closed by upstream: %d %s", closeErr.Code, closeErr.Text)
				return "", models.NewRemoteServiceError(models.StageTTS, 0, fmt.Sprintf("connection closed: %d %s", closeErr.Code, closeErr.Text))
			}
			s.logf("read error: %v", err)
			return "", models.NewRemoteUnavailableError(models.StageTTS, err)
		}

		var in incomingMessage
		if err := json.Unmarshal(b, &in); err != nil {
			s.logf("invalid json: %v", err)
			continue
		}
		if in.Error != "" {
			s.logf("upstream error: %s %s", in.Error, in.Message)
			return "", models.NewRemoteServiceError(models.StageTTS, 0, strings.TrimSpace(in.Error+" "+in.Message))
		}
		if in.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(in.Audio)
			if err != nil {
				return "", models.NewRemoteServiceError(models.StageTTS, 0, fmt.Sprintf("invalid audio chunk: %v", err))
			}
			audio.Write(chunk)
		}
		if in.IsFinal != nil && *in.IsFinal {
			break
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), time.Now().Add(250*time.Millisecond))

	if audio.Len() == 0 {
		return "", models.NewRemoteServiceError(models.StageTTS, 0, "response contained no audio")
	}
	return base64.StdEncoding.EncodeToString(audio.Bytes()), nil
}

// dialError separates a rejected handshake (the upstream answered) from a transport failure.
func (s *Synthesizer) dialError(resp *http.Response, err error) error {
	if resp != nil && resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = resp.Status
		}
		s.logf("handshake rejected: status %d, body: %s", resp.StatusCode, text)
		return models.NewRemoteServiceError(models.StageTTS, resp.StatusCode, text)
	}
	s.logf("dial error: %v", err)
	return models.NewRemoteUnavailableError(models.StageTTS, err)
}

func (s *Synthesizer) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
