package providers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DeepseekOptions configures the DeepSeek chat client.
type DeepseekOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Deepseek generates campaign and slide copy through DeepSeek's
// chat-completion API.
type Deepseek struct {
	chatClient
}

func NewDeepseek(opts DeepseekOptions) *Deepseek {
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
		baseURL = "https://api.deepseek.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "deepseek-chat"
	}
	return &Deepseek{chatClient{
		name:       "deepseek",
		envKey:     "DEEPSEEK_API_KEY",
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
	}}
}

func (d *Deepseek) Name() string { return "deepseek" }

var _ TextGenerator = (*Deepseek)(nil)
