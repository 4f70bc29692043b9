package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"graphion/internal/config"
	"graphion/internal/services"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 120 * time.Second
)

// Harm categories covered by the configured safety threshold.
var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey          string
	Model           string
	Endpoint        string
	Temperature     float64
	MaxOutputTokens int
	SafetyThreshold string
	Timeout         time.Duration
}

// ConfigFromApp derives client settings from application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		Endpoint:        cfg.Gemini.Endpoint,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		SafetyThreshold: cfg.Gemini.SafetyThreshold,
		Timeout:         cfg.GeminiTimeout(),
	}
}

// Client issues generateContent requests.
type Client struct {
	cfg    Config
	models *genai.Models
}

type clientOptions struct {
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*clientOptions)

// WithHTTPClient overrides the transport so tests can point the client at an
// httptest server (together with Config.Endpoint).
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// NewClient constructs a Gemini client using the supplied configuration.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "api key required", nil)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		cc.HTTPOptions.BaseURL = endpoint
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "create client", err)
	}
	return &Client{cfg: cfg, models: client.Models}, nil
}

// Model returns the model identifier without the "models/" prefix.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Request is a single-turn generation request.
type Request struct {
	SystemInstruction string
	Prompt            string
}

// Response holds the first candidate's text and accounting metadata.
type Response struct {
	Text         string
	FinishReason string
	ModelVersion string
	PromptTokens int64
	OutputTokens int64
}

// BlockedError reports a generation that produced no usable text.
type BlockedError struct {
	Reason       string
	FinishReason string
}

func (e *BlockedError) Error() string {
	switch {
	case e.Reason != "" && e.FinishReason != "":
		return fmt.Sprintf("gemini: blocked (%s, finish=%s)", e.Reason, e.FinishReason)
	case e.Reason != "":
		return fmt.Sprintf("gemini: blocked (%s)", e.Reason)
	case e.FinishReason != "":
		return fmt.Sprintf("gemini: no text (finish=%s)", e.FinishReason)
	default:
		return "gemini: empty response"
	}
}

func (e *BlockedError) Unwrap() error { return services.ErrGenerationBlocked }

// Generate sends one generateContent request. There is no retry.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Temperature)),
		MaxOutputTokens: int32(c.cfg.MaxOutputTokens),
		SafetySettings:  c.safetySettings(),
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, gc)
	if err != nil {
		return Response{}, services.Wrap(services.ErrGenerationUnavailable, "gemini", "generateContent", describeAPIError(err), err)
	}
	return extractResponse(resp)
}

func (c *Client) safetySettings() []*genai.SafetySetting {
	threshold := strings.TrimSpace(c.cfg.SafetyThreshold)
	if threshold == "" {
		return nil
	}
	settings := make([]*genai.SafetySetting, 0, len(harmCategories))
	for _, category := range harmCategories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThreshold(threshold),
		})
	}
	return settings
}

func extractResponse(resp *genai.GenerateContentResponse) (Response, error) {
	if resp == nil {
		return Response{}, &BlockedError{}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return Response{}, &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Response{}, &BlockedError{Reason: "no candidates"}
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	out := Response{
		Text:         text.String(),
		FinishReason: string(candidate.FinishReason),
		ModelVersion: resp.ModelVersion,
	}
	if usage := resp.UsageMetadata; usage != nil {
		out.PromptTokens = int64(usage.PromptTokenCount)
		out.OutputTokens = int64(usage.CandidatesTokenCount)
	}
	if strings.TrimSpace(out.Text) == "" {
		return Response{}, &BlockedError{FinishReason: out.FinishReason}
	}
	return out, nil
}

// HealthCheck confirms the key is accepted and the model exists without
// spending generation tokens.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	model, err := c.models.Get(ctx, c.cfg.Model, nil)
	if err != nil {
		return services.Wrap(services.ErrGenerationUnavailable, "gemini", "health", describeAPIError(err), err)
	}
	if model == nil || model.Name == "" {
		return services.Wrap(services.ErrGenerationUnavailable, "gemini", "health", "empty model metadata", nil)
	}
	return nil
}

func describeAPIError(err error) string {
	var gerr genai.APIError
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return "request timed out"
		}
		return "request failed"
	}
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("http %d: api key rejected", gerr.Code)
	case http.StatusNotFound:
		return fmt.Sprintf("http %d: model not found", gerr.Code)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("http %d: quota exhausted", gerr.Code)
	default:
		return fmt.Sprintf("http %d", gerr.Code)
	}
}
