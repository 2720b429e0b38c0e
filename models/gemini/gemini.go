// Package gemini provides a chat engine backed by the Gemini API. It is an
// alternative to the Sarvam chat endpoint and returns the same raw text the
// reply parser expects.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/Desarso/voicechat/models"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Converser implements the chat stage with genai.
type Converser struct {
	Model        string
	SystemPrompt string
	Logger       *log.Logger

	client *genai.Client
}

// NewConverser creates a Gemini client. httpClient carries the request timeout.
func NewConverser(ctx context.Context, apiKey, model string, httpClient *http.Client) (*Converser, error) {
	if apiKey == "" {
		return nil, &models.ConfigurationError{Key: "GEMINI_API_KEY"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Converser{
		Model:        model,
		SystemPrompt: models.SystemPrompt,
		Logger:       log.New(os.Stdout, "[gemini] ", log.LstdFlags),
		client:       client,
	}, nil
}

// Converse sends the turns with the system prompt as system instruction and
// returns the text of the first candidate.
func (g *Converser) Converse(ctx context.Context, turns []models.ConversationTurn) (string, error) {
	contents, extraSystem := ToContents(turns)

	system := g.SystemPrompt
	if system == "" {
		system = models.SystemPrompt
	}
	if extraSystem != "" {
		system += "\n\n" + extraSystem
	}

	result, err := g.client.Models.GenerateContent(ctx, g.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		g.logf("chat error: %v", err)
		return "", classify(err)
	}

	text := CandidateText(result)
	if text == "" {
		return "", models.NewRemoteServiceError(models.StageChat, 0, "no text candidate in response")
	}
	return text, nil
}

// ToContents converts turns into genai contents. Assistant turns become model
// turns; system turns supplied by the caller are returned joined so they can be
// folded into the system instruction.
func ToContents(turns []models.ConversationTurn) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(turns))
	var system []string
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			system = append(system, t.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

// CandidateText concatenates the text parts of the first candidate.
func CandidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return models.NewRemoteUnavailableError(models.StageChat, err)
	}
	return models.NewRemoteServiceError(models.StageChat, 0, err.Error())
}

func (g *Converser) logf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Printf(format, args...)
	}
}
