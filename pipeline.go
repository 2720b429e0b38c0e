// Package voicechat relays a recorded voice clip through speech-to-text, a chat
// engine and text-to-speech, returning the transcript, the reply and its audio.
package voicechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Desarso/voicechat/language"
	"github.com/Desarso/voicechat/models"
	"github.com/Desarso/voicechat/reply"
	"github.com/Desarso/voicechat/stores"
)

// Transcriber turns recorded audio into text plus the detected locale.
type Transcriber interface {
	Transcribe(ctx context.Context, audio models.AudioInput) (models.TranscriptionResult, error)
}

// Converser returns the chat engine's raw tagged reply for a turn history.
type Converser interface {
	Converse(ctx context.Context, turns []models.ConversationTurn) (string, error)
}

// Synthesizer renders text in a locale and returns base64 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) (string, error)
}

// Pipeline runs one voice-chat exchange: transcribe, converse, parse, synthesize.
// It holds no per-conversation state and is safe for concurrent use.
type Pipeline struct {
	Transcriber Transcriber
	Converser   Converser
	Synthesizer Synthesizer

	// Traces is optional; when set every stage outcome is recorded.
	Traces stores.TraceStore
	// Providers labels traces with the engine that served each stage.
	Providers map[string]string
	Logger    *log.Logger
}

// NewPipeline creates a pipeline with a stdout logger.
func NewPipeline(t Transcriber, c Converser, s Synthesizer) *Pipeline {
	return &Pipeline{
		Transcriber: t,
		Converser:   c,
		Synthesizer: s,
		Providers:   map[string]string{},
		Logger:      log.New(os.Stdout, "[pipeline] ", log.LstdFlags),
	}
}

// WithTraceStore enables stage tracing
func (p *Pipeline) WithTraceStore(store stores.TraceStore) *Pipeline {
	p.Traces = store
	return p
}

// WithProvider records which engine serves a stage
func (p *Pipeline) WithProvider(stage, name string) *Pipeline {
	if p.Providers == nil {
		p.Providers = map[string]string{}
	}
	p.Providers[stage] = name
	return p
}

// StageTimings is logged once per request; it is not part of the response.
type StageTimings struct {
	STT  time.Duration
	Chat time.Duration
	TTS  time.Duration
}

func (t StageTimings) String() string {
	return fmt.Sprintf("stt=%dms chat=%dms tts=%dms", t.STT.Milliseconds(), t.Chat.Milliseconds(), t.TTS.Milliseconds())
}

// ParseTurns decodes the client's history. Empty input means no history.
func ParseTurns(messagesJSON string) ([]models.ConversationTurn, error) {
	if strings.TrimSpace(messagesJSON) == "" {
		messagesJSON = "[]"
	}
	var turns []models.ConversationTurn
	if err := json.Unmarshal([]byte(messagesJSON), &turns); err != nil {
		return nil, models.NewBadRequest("Invalid messages JSON")
	}
	return turns, nil
}

// HandleVoiceChat validates the request, then calls the three stages in order.
// The first failure aborts the exchange and is returned unchanged.
func (p *Pipeline) HandleVoiceChat(ctx context.Context, audio models.AudioInput, messagesJSON string) (models.VoiceChatResponse, error) {
	if len(audio.Data) == 0 {
		return models.VoiceChatResponse{}, models.NewBadRequest("No audio file received")
	}
	turns, err := ParseTurns(messagesJSON)
	if err != nil {
		return models.VoiceChatResponse{}, err
	}

	requestID := models.RequestIDFrom(ctx)
	var timings StageTimings

	// 1. Speech to text
	start := time.Now()
	transcription, err := p.Transcriber.Transcribe(ctx, audio)
	timings.STT = time.Since(start)
	p.record(ctx, requestID, models.StageSTT, transcription.LanguageCode, timings.STT, err)
	if err != nil {
		return models.VoiceChatResponse{}, err
	}

	// 2. Chat, with the detected language injected in front of the transcript
	spoken := language.DisplayName(transcription.LanguageCode)
	turns = append(turns, models.ConversationTurn{
		Role:    models.RoleUser,
		Content: models.SpeakingPrefix(spoken) + transcription.Text,
	})

	start = time.Now()
	raw, err := p.Converser.Converse(ctx, turns)
	timings.Chat = time.Since(start)
	p.record(ctx, requestID, models.StageChat, "", timings.Chat, err)
	if err != nil {
		return models.VoiceChatResponse{}, err
	}

	parsed := reply.Parse(raw)

	// 3. Text to speech in the language the engine answered in
	start = time.Now()
	audioB64, err := p.Synthesizer.Synthesize(ctx, parsed.ReplyText, parsed.TTSLanguageCode)
	timings.TTS = time.Since(start)
	p.record(ctx, requestID, models.StageTTS, parsed.TTSLanguageCode, timings.TTS, err)
	if err != nil {
		return models.VoiceChatResponse{}, err
	}

	p.logf("request %s done: spoken=%s reply=%s %s", requestID, spoken, parsed.LanguageTag, timings)

	return models.VoiceChatResponse{
		Transcript:  transcription.Text,
		ReplyText:   parsed.ReplyText,
		Translation: parsed.Translation,
		AudioBase64: audioB64,
	}, nil
}

// record logs a stage outcome and stores it when tracing is on.
// Transcript and reply text are never part of a trace.
func (p *Pipeline) record(ctx context.Context, requestID, stage, lang string, took time.Duration, stageErr error) {
	trace := &stores.StageTrace{
		RequestID:  requestID,
		Stage:      stage,
		Status:     stores.StatusOK,
		Provider:   p.Providers[stage],
		Language:   lang,
		DurationMS: took.Milliseconds(),
	}
	if stageErr != nil {
		trace.Status = stores.StatusError
		trace.HTTPStatus = models.StatusCode(stageErr)
		trace.Error = stageErr.Error()
		p.logf("request %s %s failed after %dms: status %d: %v", requestID, stage, trace.DurationMS, trace.HTTPStatus, describe(stageErr))
	}

	if p.Traces == nil {
		return
	}
	// The trace outlives a caller that has already hung up.
	if err := p.Traces.SaveTrace(context.WithoutCancel(ctx), trace); err != nil {
		p.logf("failed to save %s trace: %v", stage, err)
	}
}

// describe includes the transport cause that the public message hides.
func describe(err error) string {
	var unavailable *models.RemoteUnavailableError
	if errors.As(err, &unavailable) && unavailable.Err != nil {
		return fmt.Sprintf("%s: %v", unavailable.Error(), unavailable.Err)
	}
	return err.Error()
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
