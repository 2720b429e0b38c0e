package sarvam

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Desarso/voicechat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 2*time.Second)
	c.BaseURL = srv.URL
	c.Logger = nil
	return c
}

func TestTranscribe_SendsMultipartWithDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("API-Subscription-Key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, DefaultSTTModel, r.FormValue("model"))
		assert.Equal(t, DefaultSTTLanguage, r.FormValue("language_code"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "RIFF", string(data))
		assert.Equal(t, models.DefaultAudioFilename, header.Filename)
		assert.Equal(t, models.DefaultAudioContentType, header.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"transcript":"namaste","language_code":"hi-IN"}`))
	})

	got, err := c.Transcribe(context.Background(), models.AudioInput{Data: []byte("RIFF")})
	require.NoError(t, err)
	assert.Equal(t, "namaste", got.Text)
	assert.Equal(t, "hi-IN", got.LanguageCode)
}

func TestTranscribe_DefaultsLanguageWhenOmitted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transcript":"hello"}`))
	})

	got, err := c.Transcribe(context.Background(), models.AudioInput{Data: []byte("x"), Filename: "clip.wav", ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, DefaultDetectedLanguage, got.LanguageCode)
}

func TestTranscribe_EmptyAudioIsBadRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Transcribe(context.Background(), models.AudioInput{Filename: "clip.webm"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, models.StatusCode(err))
	assert.False(t, called)
}

func TestTranscribe_UpstreamErrorIsRemoteServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unsupported audio"}`))
	})

	_, err := c.Transcribe(context.Background(), models.AudioInput{Data: []byte("x")})
	var svcErr *models.RemoteServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.StageSTT, svcErr.Stage)
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.UpstreamStatus)
	assert.Contains(t, err.Error(), "unsupported audio")
	assert.Contains(t, err.Error(), "Speech-to-text failed")
}

func TestConverse_PrependsSystemPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultChatModel, req.Model)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, models.RoleSystem, req.Messages[0].Role)
		assert.Equal(t, models.SystemPrompt, req.Messages[0].Content)
		assert.Equal(t, "[Speaking English]: hi", req.Messages[2].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[LANG]: en\n[REPLY]: hey"}}]}`))
	})

	got, err := c.Converse(context.Background(), []models.ConversationTurn{
		{Role: models.RoleAssistant, Content: "earlier"},
		{Role: models.RoleUser, Content: "[Speaking English]: hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[LANG]: en\n[REPLY]: hey", got)
}

func TestConverse_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Converse(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, models.StatusCode(err))
	assert.Equal(t, models.StageChat, models.StageOf(err))
}

func TestConverse_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.HTTPClient.Timeout = 50 * time.Millisecond

	_, err := c.Converse(context.Background(), nil)
	var unavailable *models.RemoteUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, models.StageChat, unavailable.Stage)
	assert.Equal(t, http.StatusServiceUnavailable, models.StatusCode(err))
	assert.Equal(t, "Chat service unreachable", err.Error())
}

func TestSynthesize_SendsLocaleAndReturnsFirstAudio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech", r.URL.Path)

		var req TextToSpeechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"नमस्ते"}, req.Inputs)
		assert.Equal(t, "hi-IN", req.TargetLanguageCode)
		assert.Equal(t, DefaultSpeaker, req.Speaker)
		assert.Equal(t, DefaultTTSModel, req.Model)
		assert.True(t, req.EnablePreprocessing)

		_, _ = w.Write([]byte(`{"audios":["QUJD","REVG"]}`))
	})

	got, err := c.Synthesize(context.Background(), "नमस्ते", "hi-IN")
	require.NoError(t, err)
	assert.Equal(t, "QUJD", got)
}

func TestSynthesize_InvalidBodyIsRemoteServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Synthesize(context.Background(), "hi", "en-IN")
	require.Error(t, err)
	assert.Equal(t, models.StageTTS, models.StageOf(err))
	assert.Equal(t, http.StatusInternalServerError, models.StatusCode(err))
}

func TestConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient("k", time.Second)
	c.BaseURL = url
	c.Logger = nil

	_, err := c.Synthesize(context.Background(), "hi", "en-IN")
	assert.Equal(t, http.StatusServiceUnavailable, models.StatusCode(err))
	assert.Equal(t, "Text-to-speech service unreachable", models.PublicMessage(err))
}
