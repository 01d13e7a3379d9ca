package providers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PerplexityOptions configures the Perplexity chat client.
type PerplexityOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Perplexity generates text through Perplexity's chat-completion API.
type Perplexity struct {
	chatClient
}

func NewPerplexity(opts PerplexityOptions) *Perplexity {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "sonar"
	}
	return &Perplexity{chatClient{
		name:       "perplexity",
		envKey:     "PERPLEXITY_API_KEY",
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
	}}
}

func (p *Perplexity) Name() string { return "perplexity" }

var _ TextGenerator = (*Perplexity)(nil)
