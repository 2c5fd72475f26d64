package ai

import (
	"context"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt([]string{"[MEMORY] likes cats"}, "hey you")
	assert.Equal(t, "Notes about this fan:\n- [MEMORY] likes cats\n\nFan says: hey you\nReply:", got)

	assert.Equal(t, "Fan says: hi\nReply:", buildPrompt(nil, "hi"))
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(" Miss you "), genai.Text("too 💕")}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Miss you too 💕", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("   ")}}}},
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewGeminiService_NotConfigured(t *testing.T) {
	_, err := NewGeminiService(context.Background(), Config{})
	assert.Error(t, err)
}
