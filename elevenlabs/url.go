package elevenlabs

import (
	"net/url"
	"strings"
)

// ConnectConfig maps to the stream-input websocket query parameters.
type ConnectConfig struct {
	// BaseURL is the websocket base URL, e.g. "wss://api.elevenlabs.io".
	BaseURL string
	// VoiceID is required.
	VoiceID string

	ModelID      string
	LanguageCode string // ISO 639-1, e.g. "hi"
	OutputFormat string
}

func DefaultBaseURL() string { return "wss://api.elevenlabs.io" }

// BuildURL returns the stream-input URL for cfg.
func BuildURL(cfg ConnectConfig) (string, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL()
	}
	base = strings.TrimRight(base, "/")

	u, err := url.Parse(base + "/v1/text-to-speech/" + url.PathEscape(cfg.VoiceID) + "/stream-input")
	if err != nil {
		return "", err
	}

	q := u.Query()
	if cfg.ModelID != "" {
		q.Set("model_id", cfg.ModelID)
	}
	if cfg.LanguageCode != "" {
		q.Set("language_code", cfg.LanguageCode)
	}
	if cfg.OutputFormat != "" {
		q.Set("output_format", cfg.OutputFormat)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
