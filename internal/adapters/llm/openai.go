package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

const DefaultOpenAIBaseURL = "https://router.huggingface.co/v1"

// OpenAIClient is a minimal OpenAI-compatible chat completions client. The
// default endpoint is the Hugging Face inference router.
type OpenAIClient struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	httpDo   *http.Client
}

func NewOpenAIClient(apiKey, baseURL, model, provider string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIClient{
		APIKey:   apiKey,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Model:    model,
		Provider: provider,
		httpDo: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type chatCompletionsRequest struct {
	Model       string                 `json:"model"`
	Messages    []domain.PromptMessage `json:"messages"`
	Temperature float64                `json:"temperature,omitempty"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GenerateChat implements domain.ChatClient.
func (c *OpenAIClient) GenerateChat(ctx context.Context, msgs []domain.PromptMessage, opts domain.ChatOptions) (string, error) {
	if !c.Configured() {
		return "", domain.NewError(domain.KindConfigurationError, "Hugging Face API key not configured", nil)
	}

	reqBody := chatCompletionsRequest{
		Model:       c.model(opts),
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return "", fmt.Errorf("chat completions http %d: %v", resp.StatusCode, errMap)
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat completions: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", errors.New("unexpected chat completions response: no content")
	}
	return out.Choices[0].Message.Content, nil
}

// model resolves the model id; a provider other than "auto" is appended as
// the router's ":provider" suffix.
func (c *OpenAIClient) model(opts domain.ChatOptions) string {
	model := opts.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = "meta-llama/Llama-3-8B-Instruct"
	}

	provider := opts.Provider
	if provider == "" {
		provider = c.Provider
	}
	if provider != "" && provider != "auto" && !strings.Contains(model, ":") {
		model += ":" + provider
	}
	return model
}
