package voicechat

import (
	"context"
	"sync"

	"github.com/Desarso/voicechat/models"
)

type stubTranscriber struct {
	mu     sync.Mutex
	calls  int
	got    models.AudioInput
	result models.TranscriptionResult
	err    error
}

func (s *stubTranscriber) Transcribe(_ context.Context, audio models.AudioInput) (models.TranscriptionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.got = audio
	return s.result, s.err
}

func (s *stubTranscriber) Got() models.AudioInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.got
}

func (s *stubTranscriber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubConverser struct {
	mu    sync.Mutex
	calls int
	got   []models.ConversationTurn
	raw   string
	err   error
}

func (s *stubConverser) Converse(_ context.Context, turns []models.ConversationTurn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.got = append([]models.ConversationTurn(nil), turns...)
	return s.raw, s.err
}

func (s *stubConverser) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSynthesizer struct {
	mu       sync.Mutex
	calls    int
	gotText  string
	gotCode  string
	audioB64 string
	err      error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text, languageCode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.gotText = text
	s.gotCode = languageCode
	return s.audioB64, s.err
}

func (s *stubSynthesizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubs struct {
	stt  *stubTranscriber
	chat *stubConverser
	tts  *stubSynthesizer
}

// newStubPipeline returns a pipeline whose engines answer the English
// "Hello there" exchange unless a test overrides them.
func newStubPipeline() (*Pipeline, stubs) {
	s := stubs{
		stt:  &stubTranscriber{result: models.TranscriptionResult{Text: "Hello there", LanguageCode: "en-IN"}},
		chat: &stubConverser{raw: "[LANG]: en\n[REPLY]: Hi! How can I help?"},
		tts:  &stubSynthesizer{audioB64: "QUJD"},
	}
	p := NewPipeline(s.stt, s.chat, s.tts)
	p.Logger = nil
	return p, s
}
