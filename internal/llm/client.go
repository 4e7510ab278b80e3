package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	// ErrBlocked means the provider refused the prompt or the answer
	ErrBlocked = errors.New("response blocked by provider")
	// ErrTruncated means the answer hit the output token limit
	ErrTruncated = errors.New("response truncated")
)

// Client generates text for the pipeline stages
type Client interface {
	// GenerateContent returns free text, sampled with the tier's temperature
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON returns a JSON document with any fences or chatter removed
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	Close() error
}

// NewClient creates the client for the configured provider
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent implements Client
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, false)
	if err != nil {
		return "", err
	}
	return generate(ctx, model, prompt)
}

// GenerateJSON implements Client
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, true)
	if err != nil {
		return "", err
	}
	text, err := generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// model configures a tier's model. JSON output always samples at
// DefaultTemperature; free text uses the tier temperature so repeated rewrite
// prompts diverge.
func (c *GeminiClient) model(tier ModelTier, jsonOutput bool) (*genai.GenerativeModel, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetCandidateCount(1)
	if jsonOutput {
		model.SetTemperature(DefaultTemperature)
		model.ResponseMIMEType = "application/json"
	} else {
		model.SetTemperature(c.config.GetTemperature(tier))
	}
	return model, nil
}

func generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", providerError(err)
	}
	return responseText(resp)
}

func providerError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", ErrBlocked, blocked)
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

// responseText joins the text parts of the first candidate. A rewrite cut off
// at the token limit is rejected rather than stored half-written.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return "", ErrTruncated
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
