package voicechat

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Desarso/voicechat/elevenlabs"
	"github.com/Desarso/voicechat/models"
	"github.com/Desarso/voicechat/models/gemini"
	"github.com/Desarso/voicechat/models/sarvam"
)

// NewUpstreamClient returns the HTTP client shared by all upstream calls.
func NewUpstreamClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// NewSarvamClient configures a Sarvam client from cfg.
func NewSarvamClient(cfg *Config, httpClient *http.Client) *sarvam.Client {
	c := sarvam.NewClient(cfg.SarvamAPIKey, cfg.UpstreamTimeout)
	c.BaseURL = cfg.SarvamBaseURL
	c.STTModel = cfg.STTModel
	c.STTLanguage = cfg.STTLanguage
	c.ChatModel = cfg.ChatModel
	c.TTSModel = cfg.TTSModel
	c.Speaker = cfg.TTSSpeaker
	if httpClient != nil {
		c.HTTPClient = httpClient
	}
	return c
}

// BuildPipeline wires the engines selected by cfg. Tracing is left to the caller.
func BuildPipeline(ctx context.Context, cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := NewUpstreamClient(cfg.UpstreamTimeout)
	sv := NewSarvamClient(cfg, httpClient)

	var converser Converser = sv
	if cfg.ChatProvider == ProviderGemini {
		g, err := gemini.NewConverser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini converser: %w", err)
		}
		converser = g
	}

	var synthesizer Synthesizer = sv
	if cfg.TTSProvider == ProviderElevenLabs {
		el, err := elevenlabs.NewSynthesizer(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID, cfg.UpstreamTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create elevenlabs synthesizer: %w", err)
		}
		synthesizer = el
	}

	return NewPipeline(sv, converser, synthesizer).
		WithProvider(models.StageSTT, ProviderSarvam).
		WithProvider(models.StageChat, cfg.ChatProvider).
		WithProvider(models.StageTTS, cfg.TTSProvider), nil
}
