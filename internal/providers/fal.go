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

// FalOptions configures the fal.ai client.
type FalOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	DefaultSize    string
	InferenceSteps int
	GuidanceScale  float64
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Fal calls fal.ai's synchronous queue endpoint: the request blocks until
// the image is rendered, so no status polling is needed on this side.
type Fal struct {
	apiKey         string
	baseURL        string
	model          string
	defaultSize    string
	inferenceSteps int
	guidanceScale  float64
	httpClient     *http.Client
	logger         zerolog.Logger
}

type falRequest struct {
	Prompt         string  `json:"prompt"`
	ImageSize      string  `json:"image_size,omitempty"`
	NumImages      int     `json:"num_images"`
	Seed           *int    `json:"seed,omitempty"`
	InferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
}

type falResponse struct {
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
	Seed      int64  `json:"seed"`
	RequestID string `json:"request_id"`
}

// NewFal constructs a fal client with sane defaults.
func NewFal(opts FalOptions) *Fal {
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
		baseURL = "https://fal.run"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "fal-ai/flux/dev"
	}
	size := strings.TrimSpace(opts.DefaultSize)
	if size == "" {
		size = "portrait_4_3"
	}
	steps := opts.InferenceSteps
	if steps <= 0 {
		steps = 28
	}
	scale := opts.GuidanceScale
	if scale <= 0 {
		scale = 3.5
	}
	return &Fal{
		apiKey:         strings.TrimSpace(opts.APIKey),
		baseURL:        baseURL,
		model:          model,
		defaultSize:    size,
		inferenceSteps: steps,
		guidanceScale:  scale,
		httpClient:     httpClient,
		logger:         opts.Logger,
	}
}

func (f *Fal) Name() string { return "fal" }

// GenerateImage renders one image and returns its hosted URL.
func (f *Fal) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	if f.apiKey == "" {
		return "", &domain.ConfigError{Key: "FAL_API_KEY", Reason: "credential is not set"}
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}
	payload := falRequest{
		Prompt:         prompt,
		ImageSize:      f.defaultSize,
		NumImages:      1,
		InferenceSteps: f.inferenceSteps,
		GuidanceScale:  f.guidanceScale,
	}
	if req.Size != "" {
		payload.ImageSize = req.Size
	}
	if req.Seed > 0 {
		seed := req.Seed
		payload.Seed = &seed
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fal: encode request: %w", err)
	}
	endpoint := f.baseURL + "/" + f.model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("fal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+f.apiKey)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderError{Provider: f.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: f.Name(), Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		return "", &domain.ProviderError{Provider: f.Name(), Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var decoded falResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &domain.ProviderError{Provider: f.Name(), Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Images) == 0 || strings.TrimSpace(decoded.Images[0].URL) == "" {
		return "", &domain.ProviderError{Provider: f.Name(), Status: resp.StatusCode, Body: strings.TrimSpace(string(raw)), Err: fmt.Errorf("empty image url")}
	}
	url := strings.TrimSpace(decoded.Images[0].URL)
	f.logger.Debug().
		Str("model", f.model).
		Str("request_id", decoded.RequestID).
		Str("url", url).
		Msg("fal: generated image")
	return url, nil
}

var _ ImageGenerator = (*Fal)(nil)
