package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"lookbook/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFalGenerateImage(t *testing.T) {
	var captured *http.Request
	var payload falRequest
	client := NewFal(FalOptions{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("request body not json: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"images":[{"url":"https://fal.media/files/out.png","width":768,"height":1024}],"seed":42,"request_id":"req-1"}`), nil
		})},
	})

	url, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "  studio shot of a blazer  ", Seed: 7})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if url != "https://fal.media/files/out.png" {
		t.Fatalf("url = %q, want hosted image url", url)
	}
	if got := captured.Header.Get("Authorization"); got != "Key secret" {
		t.Fatalf("Authorization = %q, want Key secret", got)
	}
	if captured.URL.Path != "/fal-ai/flux/dev" {
		t.Fatalf("path = %q, want default model endpoint", captured.URL.Path)
	}
	if payload.Prompt != "studio shot of a blazer" {
		t.Fatalf("prompt = %q, want trimmed prompt", payload.Prompt)
	}
	if payload.NumImages != 1 {
		t.Fatalf("num_images = %d, want 1", payload.NumImages)
	}
	if payload.ImageSize != "portrait_4_3" {
		t.Fatalf("image_size = %q, want default portrait_4_3", payload.ImageSize)
	}
	if payload.InferenceSteps != 28 || payload.GuidanceScale != 3.5 {
		t.Fatalf("fine-tune params = %d/%v, want defaults 28/3.5", payload.InferenceSteps, payload.GuidanceScale)
	}
	if payload.Seed == nil || *payload.Seed != 7 {
		t.Fatalf("seed = %v, want 7", payload.Seed)
	}
}

func TestFalGenerateImageUpstreamFailure(t *testing.T) {
	client := NewFal(FalOptions{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnprocessableEntity, `{"detail":"prompt rejected"}`), nil
		})},
	})

	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "blazer"})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if provErr.Provider != "fal" {
		t.Fatalf("Provider = %q, want fal", provErr.Provider)
	}
	if provErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d, want 422", provErr.Status)
	}
	if !strings.Contains(provErr.Body, "prompt rejected") {
		t.Fatalf("Body = %q, want upstream body preserved", provErr.Body)
	}
}

func TestFalGenerateImageEmptyImages(t *testing.T) {
	client := NewFal(FalOptions{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"images":[]}`), nil
		})},
	})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "blazer"})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
}

func TestFalGenerateImageMissingCredential(t *testing.T) {
	calls := 0
	client := NewFal(FalOptions{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
	})

	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "blazer"})
	var configErr *domain.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if configErr.Key != "FAL_API_KEY" {
		t.Fatalf("Key = %q, want FAL_API_KEY", configErr.Key)
	}
	if calls != 0 {
		t.Fatalf("transport called %d times, want 0", calls)
	}
}

func TestFalGenerateImageEmptyPrompt(t *testing.T) {
	client := NewFal(FalOptions{APIKey: "secret"})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "   "})
	if !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("error = %v, want ErrEmptyPrompt", err)
	}
}
