package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/lexmill99/studycoach/internal/core"
)

type GeminiLLM struct {
	client          *genai.Client
	modelName       string
	maxOutputTokens int32
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, maxOutputTokens int) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName, maxOutputTokens: int32(maxOutputTokens)}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) ModelName() string {
	return g.modelName
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if g.maxOutputTokens > 0 {
		m.SetMaxOutputTokens(g.maxOutputTokens)
	}
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", mapUpstreamError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &core.UpstreamError{Status: 502, Message: "empty response from model"}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// mapUpstreamError folds provider failures into the core taxonomy so the
// rest of the pipeline never inspects googleapi types.
func mapUpstreamError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrUpstreamTimeout
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return core.ErrUpstreamRateLimited
		}
		return &core.UpstreamError{Status: apiErr.Code, Message: apiErr.Message}
	}
	return &core.UpstreamError{Status: 502, Message: err.Error()}
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
