package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Rewriter performs one rewrite request. A failed request returns a
// *StatusError; StatusCode is zero for transport failures.
type Rewriter interface {
	Rewrite(ctx context.Context, prompt string) (string, error)
}

// StatusError describes a failed rewrite request.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// CompletionClient talks to a plain completion endpoint that accepts
// {prompt, max_tokens, temperature} and answers with choices[0].text.
type CompletionClient struct {
	endpoint    string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func NewCompletionClient(cfg Config, httpClient *http.Client) *CompletionClient {
	if httpClient == nil {
		// per-attempt deadlines come from the caller's context
		httpClient = &http.Client{}
	}
	return &CompletionClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      httpClient,
	}
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Text string `json:"text"`
}

func (c *CompletionClient) Rewrite(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &StatusError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &StatusError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(out.Choices) > 0 {
		return strings.TrimSpace(out.Choices[0].Text), nil
	}
	return strings.TrimSpace(out.Text), nil
}

// OpenAIClient rewrites through the chat completions API. The SDK's own
// retries are disabled; Service owns the retry policy.
type OpenAIClient struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIClient(cfg Config, extra ...option.RequestOption) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAIClient) Rewrite(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(o.maxTokens)),
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &StatusError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// NewRewriter picks the client for cfg.Provider.
func NewRewriter(cfg Config) Rewriter {
	if cfg.Provider == ProviderOpenAI {
		return NewOpenAIClient(cfg)
	}
	return NewCompletionClient(cfg, nil)
}
