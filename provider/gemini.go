package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var geminiModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// geminiClient implements Provider using Google's Generative AI SDK
type geminiClient struct {
	client      *genai.Client
	temperature float64
	maxTokens   int
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(apiKey string, temperature float64, maxTokens int) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrAuth)
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client, temperature: temperature, maxTokens: maxTokens}, nil
}

func (c *geminiClient) Models() []string { return geminiModels }

func (c *geminiClient) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, "Say ok", geminiModels[0])
	return err
}

func (c *geminiClient) Complete(ctx context.Context, prompt string, model string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	if model == "" {
		model = geminiModels[0]
	}

	gm := c.client.GenerativeModel(model)
	gm.SetTemperature(float32(c.temperature))
	if c.maxTokens > 0 {
		gm.SetMaxOutputTokens(int32(c.maxTokens))
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	return extractText(resp)
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimit, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrTransport)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in response", ErrTransport)
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, ""), nil
}
