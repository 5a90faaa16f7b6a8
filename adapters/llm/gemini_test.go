package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

func TestValidateGeminiConfig(t *testing.T) {
	assert.Error(t, ValidateGeminiConfig(GeminiConfig{}))
	assert.Error(t, ValidateGeminiConfig(GeminiConfig{APIKey: "k", Temperature: 3}))
	assert.Error(t, ValidateGeminiConfig(GeminiConfig{APIKey: "k", MaxOutputTokens: -1}))
	assert.NoError(t, ValidateGeminiConfig(GeminiConfig{APIKey: "k"}))
}

func TestNewGeminiLLM_MissingKey(t *testing.T) {
	_, err := NewGeminiLLM(GeminiConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts, Role: genai.RoleModel}}},
	}
}

func TestGeminiLLM_Generate(t *testing.T) {
	var gotModel string
	var gotContents []*genai.Content
	var gotConfig *genai.GenerateContentConfig

	g := newGeminiLLM(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotContents, gotConfig = model, contents, config
		return textResponse("Hello ", "there"), nil
	}, GeminiConfig{APIKey: "k"}, zaptest.NewLogger(t))

	out, err := g.Generate(context.Background(), []repositories.Part{
		repositories.InlinePart([]byte("RIFF"), "audio/wav"),
		repositories.TextPart("reply please"),
	}, "be brief")
	require.NoError(t, err)

	assert.Equal(t, "Hello there", out)
	assert.Equal(t, defaultModel, gotModel)
	require.Len(t, gotContents, 1)
	require.Len(t, gotContents[0].Parts, 2)
	require.NotNil(t, gotContents[0].Parts[0].InlineData)
	assert.Equal(t, "audio/wav", gotContents[0].Parts[0].InlineData.MIMEType)
	assert.Equal(t, "reply please", gotContents[0].Parts[1].Text)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "be brief", gotConfig.SystemInstruction.Parts[0].Text)
}

func TestGeminiLLM_GenerateError(t *testing.T) {
	calls := 0
	g := newGeminiLLM(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, errors.New("quota exceeded")
	}, GeminiConfig{APIKey: "k"}, zaptest.NewLogger(t))

	_, err := g.Generate(context.Background(), []repositories.Part{repositories.TextPart("hi")}, "")
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "a single attempt by default")
}

func TestGeminiLLM_EmptyCandidates(t *testing.T) {
	g := newGeminiLLM(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}, GeminiConfig{APIKey: "k"}, zaptest.NewLogger(t))

	out, err := g.Generate(context.Background(), []repositories.Part{repositories.TextPart("hi")}, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnconfiguredGenerator(t *testing.T) {
	_, err := NewUnconfiguredGenerator().Generate(context.Background(), nil, "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
