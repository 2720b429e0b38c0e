package voicechat

import (
	"testing"
	"time"

	"github.com/Desarso/voicechat/models"
	"github.com/Desarso/voicechat/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SARVAM_API_KEY", "secret")
	for _, key := range []string{"PORT", "HOST", "UPSTREAM_TIMEOUT", "CHAT_PROVIDER", "TTS_PROVIDER", "TRACE_STORE", "SARVAM_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.SarvamAPIKey)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "https://api.sarvam.ai", cfg.SarvamBaseURL)
	assert.Equal(t, "saarika:v2", cfg.STTModel)
	assert.Equal(t, "sarvam-m", cfg.ChatModel)
	assert.Equal(t, "bulbul:v2", cfg.TTSModel)
	assert.Equal(t, "meera", cfg.TTSSpeaker)
	assert.Equal(t, ProviderSarvam, cfg.ChatProvider)
	assert.Equal(t, ProviderSarvam, cfg.TTSProvider)
	assert.Empty(t, cfg.TraceStore)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SARVAM_API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("CHAT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("TTS_PROVIDER", "sarvam")
	t.Setenv("TRACE_STORE", "sqlite")
	t.Setenv("TRACE_RETENTION", "24h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, ProviderGemini, cfg.ChatProvider)
	assert.Equal(t, "sqlite", cfg.TraceStore)
	assert.Equal(t, 24*time.Hour, cfg.TraceRetention)
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	t.Setenv("SARVAM_API_KEY", "")

	_, err := LoadConfig()
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "SARVAM_API_KEY", cfgErr.Key)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("SARVAM_API_KEY", "secret")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	_, err := LoadConfig()
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "UPSTREAM_TIMEOUT", cfgErr.Key)
}

func TestValidate_ProviderCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantKey string
	}{
		{"gemini without key", NewConfig().WithSarvamAPIKey("k").WithGemini("", ""), "GEMINI_API_KEY"},
		{"elevenlabs without voice", NewConfig().WithSarvamAPIKey("k").WithElevenLabs("el", ""), "ELEVENLABS_VOICE_ID"},
		{"unknown chat provider", func() *Config { c := NewConfig().WithSarvamAPIKey("k"); c.ChatProvider = "openai"; return c }(), "CHAT_PROVIDER"},
		{"unknown trace store", func() *Config { c := NewConfig().WithSarvamAPIKey("k"); c.TraceStore = "mysql"; return c }(), "TRACE_STORE"},
		{"non-positive timeout", NewConfig().WithSarvamAPIKey("k").WithTimeout(0), "UPSTREAM_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfgErr *models.ConfigurationError
			require.ErrorAs(t, tt.cfg.Validate(), &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}

	assert.NoError(t, NewConfig().WithSarvamAPIKey("k").WithPostgresTraces("host=db").Validate())
}

func TestTraceStoreConfig_LogSQL(t *testing.T) {
	t.Setenv("SARVAM_API_KEY", "secret")
	t.Setenv("TRACE_STORE", "sqlite")
	t.Setenv("TRACE_DSN", "traces.db")
	t.Setenv("TRACE_LOG_SQL", "TRUE")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	sc := cfg.TraceStoreConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "traces.db", sc.Connection)
	assert.Equal(t, "true", sc.Options[stores.OptionLogSQL])

	t.Setenv("TRACE_LOG_SQL", "")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.NotContains(t, cfg.TraceStoreConfig().Options, stores.OptionLogSQL)
}
