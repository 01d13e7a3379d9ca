package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
)

// OpenAIOptions configures the OpenAI image client.
type OpenAIOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	DefaultSize    string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// OpenAI generates images through the images endpoint.
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	defaultSize string
	httpClient  *http.Client
	logger      zerolog.Logger
}

type openAIImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n"`
}

type openAIImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "dall-e-3"
	}
	size := strings.TrimSpace(opts.DefaultSize)
	if size == "" {
		size = "1024x1024"
	}
	return &OpenAI{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		model:       model,
		defaultSize: size,
		httpClient:  httpClient,
		logger:      opts.Logger,
	}
}

func (o *OpenAI) Name() string { return "openai" }

// GenerateImage renders one image and returns its hosted URL.
func (o *OpenAI) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	if o.apiKey == "" {
		return "", &domain.ConfigError{Key: "OPENAI_API_KEY", Reason: "credential is not set"}
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}
	payload := openAIImageRequest{Model: o.model, Prompt: prompt, Size: o.defaultSize, N: 1}
	if req.Size != "" {
		payload.Size = req.Size
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderError{Provider: o.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: o.Name(), Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		return "", &domain.ProviderError{Provider: o.Name(), Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var decoded openAIImageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &domain.ProviderError{Provider: o.Name(), Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].URL) == "" {
		return "", &domain.ProviderError{Provider: o.Name(), Status: resp.StatusCode, Body: strings.TrimSpace(string(raw)), Err: fmt.Errorf("empty image url")}
	}
	url := strings.TrimSpace(decoded.Data[0].URL)
	o.logger.Debug().Str("model", o.model).Str("url", url).Msg("openai: generated image")
	return url, nil
}

var _ ImageGenerator = (*OpenAI)(nil)
