package voicechat

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Desarso/voicechat/elevenlabs"
	"github.com/Desarso/voicechat/models"
	"github.com/Desarso/voicechat/models/gemini"
	"github.com/Desarso/voicechat/models/sarvam"
	"github.com/Desarso/voicechat/stores"
	"github.com/joho/godotenv"
)

// Engine selectors.
const (
	ProviderSarvam     = "sarvam"
	ProviderGemini     = "gemini"
	ProviderElevenLabs = "elevenlabs"
)

// Config holds everything the relay reads at startup.
type Config struct {
	Host string
	Port string

	SarvamAPIKey    string
	SarvamBaseURL   string
	STTModel        string
	STTLanguage     string
	ChatModel       string
	TTSModel        string
	TTSSpeaker      string
	UpstreamTimeout time.Duration

	ChatProvider string
	GeminiAPIKey string
	GeminiModel  string

	TTSProvider       string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	// TraceStore is "", "sqlite" or "postgres". Empty disables tracing.
	TraceStore         string
	TraceDSN           string
	TraceRetention     time.Duration
	TracePruneSchedule string
	// TraceLogSQL echoes the trace store's SQL through the gorm logger.
	TraceLogSQL        bool
}

// NewConfig creates a configuration with default values and no credentials.
func NewConfig() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8000",
		SarvamBaseURL:      sarvam.DefaultBaseURL,
		STTModel:           sarvam.DefaultSTTModel,
		STTLanguage:        sarvam.DefaultSTTLanguage,
		ChatModel:          sarvam.DefaultChatModel,
		TTSModel:           sarvam.DefaultTTSModel,
		TTSSpeaker:         sarvam.DefaultSpeaker,
		UpstreamTimeout:    sarvam.DefaultTimeout,
		ChatProvider:       ProviderSarvam,
		GeminiModel:        gemini.DefaultModel,
		TTSProvider:        ProviderSarvam,
		ElevenLabsModelID:  elevenlabs.DefaultModelID,
		TraceDSN:           stores.DefaultSQLitePath,
		TraceRetention:     7 * 24 * time.Hour,
		TracePruneSchedule: stores.DefaultPruneSchedule,
	}
}

// LoadConfig reads .env (if present) and the process environment, then validates.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	c := NewConfig()
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)

	c.SarvamAPIKey = os.Getenv("SARVAM_API_KEY")
	c.SarvamBaseURL = getEnv("SARVAM_BASE_URL", c.SarvamBaseURL)
	c.STTModel = getEnv("SARVAM_STT_MODEL", c.STTModel)
	c.STTLanguage = getEnv("SARVAM_STT_LANGUAGE", c.STTLanguage)
	c.ChatModel = getEnv("SARVAM_CHAT_MODEL", c.ChatModel)
	c.TTSModel = getEnv("SARVAM_TTS_MODEL", c.TTSModel)
	c.TTSSpeaker = getEnv("SARVAM_TTS_SPEAKER", c.TTSSpeaker)

	var err error
	if c.UpstreamTimeout, err = getDurationEnv("UPSTREAM_TIMEOUT", c.UpstreamTimeout); err != nil {
		return nil, err
	}

	c.ChatProvider = strings.ToLower(getEnv("CHAT_PROVIDER", c.ChatProvider))
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)

	c.TTSProvider = strings.ToLower(getEnv("TTS_PROVIDER", c.TTSProvider))
	c.ElevenLabsAPIKey = os.Getenv("ELEVENLABS_API_KEY")
	c.ElevenLabsVoiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	c.ElevenLabsModelID = getEnv("ELEVENLABS_MODEL_ID", c.ElevenLabsModelID)

	c.TraceStore = strings.ToLower(os.Getenv("TRACE_STORE"))
	c.TraceDSN = getEnv("TRACE_DSN", c.TraceDSN)
	if c.TraceRetention, err = getDurationEnv("TRACE_RETENTION", c.TraceRetention); err != nil {
		return nil, err
	}
	c.TracePruneSchedule = getEnv("TRACE_PRUNE_SCHEDULE", c.TracePruneSchedule)
	c.TraceLogSQL = strings.EqualFold(os.Getenv("TRACE_LOG_SQL"), "true")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	// Sarvam still serves transcription whichever chat and synthesis engines are picked.
	if c.SarvamAPIKey == "" {
		return &models.ConfigurationError{Key: "SARVAM_API_KEY"}
	}
	if c.UpstreamTimeout <= 0 {
		return &models.ConfigurationError{Key: "UPSTREAM_TIMEOUT", Message: "must be positive"}
	}

	switch c.ChatProvider {
	case ProviderSarvam:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &models.ConfigurationError{Key: "GEMINI_API_KEY"}
		}
	default:
		return &models.ConfigurationError{Key: "CHAT_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.ChatProvider)}
	}

	switch c.TTSProvider {
	case ProviderSarvam:
	case ProviderElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return &models.ConfigurationError{Key: "ELEVENLABS_API_KEY"}
		}
		if c.ElevenLabsVoiceID == "" {
			return &models.ConfigurationError{Key: "ELEVENLABS_VOICE_ID"}
		}
	default:
		return &models.ConfigurationError{Key: "TTS_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.TTSProvider)}
	}

	switch c.TraceStore {
	case "", "sqlite", "postgres":
	default:
		return &models.ConfigurationError{Key: "TRACE_STORE", Message: fmt.Sprintf("unsupported store %q", c.TraceStore)}
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// WithSarvamAPIKey sets the Sarvam subscription key
func (c *Config) WithSarvamAPIKey(key string) *Config {
	c.SarvamAPIKey = key
	return c
}

// WithBaseURL points the Sarvam client at another host, e.g. a test server
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.SarvamBaseURL = baseURL
	return c
}

// WithTimeout sets the per-call upstream timeout
func (c *Config) WithTimeout(d time.Duration) *Config {
	c.UpstreamTimeout = d
	return c
}

// WithAddr sets the listen host and port
func (c *Config) WithAddr(host, port string) *Config {
	c.Host = host
	c.Port = port
	return c
}

// WithGemini switches the chat engine to Gemini
func (c *Config) WithGemini(apiKey, model string) *Config {
	c.ChatProvider = ProviderGemini
	c.GeminiAPIKey = apiKey
	if model != "" {
		c.GeminiModel = model
	}
	return c
}

// WithElevenLabs switches synthesis to ElevenLabs
func (c *Config) WithElevenLabs(apiKey, voiceID string) *Config {
	c.TTSProvider = ProviderElevenLabs
	c.ElevenLabsAPIKey = apiKey
	c.ElevenLabsVoiceID = voiceID
	return c
}

// WithSQLiteTraces records stage traces in a SQLite file
func (c *Config) WithSQLiteTraces(path string) *Config {
	c.TraceStore = "sqlite"
	c.TraceDSN = path
	return c
}

// WithPostgresTraces records stage traces in PostgreSQL
func (c *Config) WithPostgresTraces(dsn string) *Config {
	c.TraceStore = "postgres"
	c.TraceDSN = dsn
	return c
}

// TraceStoreConfig describes the trace database for stores.NewTraceStore.
func (c *Config) TraceStoreConfig() *stores.StoreConfig {
	sc := stores.NewStoreConfig(c.TraceStore, c.TraceDSN)
	if c.TraceLogSQL {
		sc.WithOption(stores.OptionLogSQL, "true")
	}
	return sc
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &models.ConfigurationError{Key: key, Message: fmt.Sprintf("invalid duration %q", v)}
	}
	return d, nil
}
