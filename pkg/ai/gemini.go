package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash-001"

var ErrEmptyResponse = errors.New("vertex ai returned no text")

type Config struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// GeminiService writes chat reply suggestions with a Vertex AI Gemini model.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, cfg Config) (*GeminiService, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex ai is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vertex ai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) GenerateReply(ctx context.Context, system string, notes []string, message string) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetTemperature(0.8)
	model.SetMaxOutputTokens(120)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(notes, message)))
	if err != nil {
		return "", fmt.Errorf("vertex ai generate: %w", err)
	}
	return responseText(resp)
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

func buildPrompt(notes []string, message string) string {
	var b strings.Builder
	if len(notes) > 0 {
		b.WriteString("Notes about this fan:\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Fan says: ")
	b.WriteString(message)
	b.WriteString("\nReply:")
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	reply := strings.TrimSpace(out.String())
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}
