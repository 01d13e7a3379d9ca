package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
)

// chatClient is the shared plumbing for chat-completion shaped APIs. Both
// deepseek and perplexity speak this wire format; only credentials, base
// URLs and model names differ.
type chatClient struct {
	name       string
	envKey     string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const chatSystemPrompt = "You are a copywriter for fashion and product photography campaigns. Answer with the requested text only."

// GenerateText issues one chat completion and returns the first choice.
func (c *chatClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if c.apiKey == "" {
		return "", &domain.ConfigError{Key: c.envKey, Reason: "credential is not set"}
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}
	messages := []chatMessage{{Role: "system", Content: chatSystemPrompt}}
	if extra := strings.TrimSpace(req.Context); extra != "" {
		messages = append(messages, chatMessage{Role: "user", Content: "Context:\n" + extra})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload := chatRequest{Model: c.model, Messages: messages, Temperature: 0.7}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", c.name, err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderError{Provider: c.name, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: c.name, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		return "", &domain.ProviderError{Provider: c.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &domain.ProviderError{Provider: c.name, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Choices) == 0 {
		return "", &domain.ProviderError{Provider: c.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw)), Err: fmt.Errorf("no choices")}
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", &domain.ProviderError{Provider: c.name, Status: resp.StatusCode, Err: fmt.Errorf("empty completion")}
	}
	c.logger.Debug().Str("model", c.model).Int("chars", len(text)).Msgf("%s: generated text", c.name)
	return text, nil
}
