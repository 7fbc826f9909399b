// Package gemini adapts the Gemini generateContent API to a plain
// prompt-in, text-out call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-1.5-flash-001"
	DefaultAPIVersion = "v1beta"
)

var (
	ErrMissingAPIKey = errors.New("gemini: api key is required")
	ErrNoCandidates  = errors.New("gemini: response has no text candidates")
)

// Config configures a Client. An empty BaseURL uses the SDK default.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls generateContent for a single model.
type Client struct {
	models *genai.Models
	model  string
	config *genai.GenerateContentConfig
}

// NewClient creates a Client. The key travels in the x-goog-api-key header
// and never appears in request URLs.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: DefaultAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{models: gc.Models, model: cfg.Model, config: GenerateConfig()}, nil
}

// GenerateConfig favours varied output and disables blocking for the four
// harm categories; random symbol strings otherwise trip the filters.
func GenerateConfig() *genai.GenerateContentConfig {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	safety := make([]*genai.SafetySetting, len(categories))
	for i, c := range categories {
		safety[i] = &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockNone}
	}

	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](1),
		TopP:             genai.Ptr[float32](0.95),
		TopK:             genai.Ptr[float32](64),
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
		SafetySettings:   safety,
	}
}

// GenerateText sends prompt as a single user turn and returns the text of
// the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	text := resp.Text()
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}
