// Package sarvam talks to the Sarvam AI speech-to-text, chat completion and
// text-to-speech endpoints. Each call is a single attempt; failures come back
// as models.RemoteServiceError or models.RemoteUnavailableError.
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/Desarso/voicechat/models"
)

const (
	DefaultBaseURL     = "https://api.sarvam.ai"
	DefaultSTTModel    = "saarika:v2"
	DefaultSTTLanguage = "unknown" // let the upstream detect the spoken language
	DefaultChatModel   = "sarvam-m"
	DefaultTTSModel    = "bulbul:v2"
	DefaultSpeaker     = "meera"
	DefaultTimeout     = 30 * time.Second

	// DefaultDetectedLanguage is assumed when the upstream omits language_code.
	DefaultDetectedLanguage = "en-IN"

	subscriptionKeyHeader = "API-Subscription-Key"
)

// Client implements transcription, chat and synthesis against one Sarvam account.
// It is safe for concurrent use; all per-request state lives on the stack.
type Client struct {
	APIKey       string
	BaseURL      string // Optional: defaults to DefaultBaseURL
	STTModel     string
	STTLanguage  string
	ChatModel    string
	TTSModel     string
	Speaker      string
	SystemPrompt string // Optional: defaults to models.SystemPrompt

	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewClient creates a client with default models and a bounded request timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		APIKey:       apiKey,
		BaseURL:      DefaultBaseURL,
		STTModel:     DefaultSTTModel,
		STTLanguage:  DefaultSTTLanguage,
		ChatModel:    DefaultChatModel,
		TTSModel:     DefaultTTSModel,
		Speaker:      DefaultSpeaker,
		SystemPrompt: models.SystemPrompt,
		HTTPClient:   &http.Client{Timeout: timeout},
		Logger:       log.New(os.Stdout, "[sarvam] ", log.LstdFlags),
	}
}

// Transcribe uploads the clip to the speech-to-text endpoint and returns the
// transcript with the detected language code.
func (c *Client) Transcribe(ctx context.Context, audio models.AudioInput) (models.TranscriptionResult, error) {
	if len(audio.Data) == 0 {
		return models.TranscriptionResult{}, models.NewBadRequest("No audio file received")
	}

	body, contentType, err := c.speechToTextForm(audio)
	if err != nil {
		return models.TranscriptionResult{}, fmt.Errorf("failed to build speech-to-text form: %w", err)
	}

	var out SpeechToTextResponse
	if err := c.do(ctx, models.StageSTT, "/speech-to-text", contentType, body, &out); err != nil {
		return models.TranscriptionResult{}, err
	}

	lang := strings.TrimSpace(out.LanguageCode)
	if lang == "" {
		lang = DefaultDetectedLanguage
	}
	return models.TranscriptionResult{Text: out.Transcript, LanguageCode: lang}, nil
}

// Converse sends the system prompt followed by turns and returns the top
// completion text verbatim.
func (c *Client) Converse(ctx context.Context, turns []models.ConversationTurn) (string, error) {
	messages := make([]models.ConversationTurn, 0, len(turns)+1)
	messages = append(messages, models.ConversationTurn{Role: models.RoleSystem, Content: c.systemPrompt()})
	messages = append(messages, turns...)

	payload, err := json.Marshal(ChatRequest{Model: orDefault(c.ChatModel, DefaultChatModel), Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var out ChatResponse
	if err := c.do(ctx, models.StageChat, "/chat/completions", "application/json", bytes.NewReader(payload), &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		c.logf("chat: response had no choices")
		return "", models.NewRemoteServiceError(models.StageChat, 0, "response contained no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Synthesize renders text in the given locale and returns base64 audio.
func (c *Client) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	payload, err := json.Marshal(TextToSpeechRequest{
		Inputs:              []string{text},
		TargetLanguageCode:  languageCode,
		Speaker:             orDefault(c.Speaker, DefaultSpeaker),
		Model:               orDefault(c.TTSModel, DefaultTTSModel),
		EnablePreprocessing: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal text-to-speech request: %w", err)
	}

	var out TextToSpeechResponse
	if err := c.do(ctx, models.StageTTS, "/text-to-speech", "application/json", bytes.NewReader(payload), &out); err != nil {
		return "", err
	}
	if len(out.Audios) == 0 {
		c.logf("tts: response had no audios")
		return "", models.NewRemoteServiceError(models.StageTTS, 0, "response contained no audio")
	}
	return out.Audios[0], nil
}

// speechToTextForm builds the multipart body for the speech-to-text upload.
func (c *Client) speechToTextForm(audio models.AudioInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, audio.FilenameOrDefault()))
	h.Set("Content-Type", audio.ContentTypeOrDefault())
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}
	if err := mw.WriteField("model", orDefault(c.STTModel, DefaultSTTModel)); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("language_code", orDefault(c.STTLanguage, DefaultSTTLanguage)); err != nil {
		return nil, "", fmt.Errorf("write language field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// do performs one POST and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, stage, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", stage, err)
	}
	c.setHeaders(req, contentType)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logf("%s network error: %v", stage, err)
		return models.NewRemoteUnavailableError(stage, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logf("%s read error: %v", stage, err)
		return models.NewRemoteUnavailableError(stage, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(respBody))
		c.logf("%s API error: status %d, body: %s", stage, resp.StatusCode, text)
		return models.NewRemoteServiceError(stage, resp.StatusCode, text)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		c.logf("%s decode error: %v", stage, err)
		return models.NewRemoteServiceError(stage, resp.StatusCode, fmt.Sprintf("invalid response body: %v", err))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, contentType string) {
	req.Header.Set(subscriptionKeyHeader, c.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) baseURL() string {
	return strings.TrimRight(orDefault(c.BaseURL, DefaultBaseURL), "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *Client) systemPrompt() string {
	return orDefault(c.SystemPrompt, models.SystemPrompt)
}

func (c *Client) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
