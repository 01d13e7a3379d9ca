// Package providers holds the adapters over third-party generative APIs and
// the registry that selects the active one at dispatch time.
package providers

import "context"

// ImageRequest carries the normalized inputs for one image generation call.
type ImageRequest struct {
	Prompt string
	Size   string
	Seed   int
}

// TextRequest carries the inputs for one text generation call. Context is
// optional supporting material (product metadata, prior slide text).
type TextRequest struct {
	Prompt  string
	Context string
}

// Adapter is implemented by every provider backend. Capabilities beyond the
// name are discovered by asserting ImageGenerator or TextGenerator.
type Adapter interface {
	Name() string
}

// ImageGenerator produces one artifact URL per call. Provider-specific
// request and response shapes stay behind this contract.
type ImageGenerator interface {
	Adapter
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// TextGenerator produces generated text for a prompt.
type TextGenerator interface {
	Adapter
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}
