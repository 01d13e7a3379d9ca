package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lookbook/internal/domain"
)

// SettingAIProvider is the runtime setting naming the active backend.
const SettingAIProvider = "ai_provider"

// SettingReader reads the current value of a named runtime setting.
type SettingReader interface {
	Get(ctx context.Context, name string) (string, error)
}

// Registry resolves the active provider adapter from the ai_provider
// setting. The setting is re-read on every Resolve so an administrative
// change takes effect on the next dispatch without a restart. New backends
// are added by registering another adapter under a new key.
type Registry struct {
	settings SettingReader
	adapters map[string]Adapter
}

func NewRegistry(settings SettingReader) *Registry {
	return &Registry{
		settings: settings,
		adapters: make(map[string]Adapter),
	}
}

// Register makes an adapter resolvable under the given key. Registration
// happens at startup; Resolve never mutates the adapter set.
func (r *Registry) Register(key string, adapter Adapter) {
	r.adapters[strings.ToLower(strings.TrimSpace(key))] = adapter
}

// Registered reports whether an adapter is registered under the key.
func (r *Registry) Registered(key string) bool {
	_, ok := r.adapters[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Keys returns the registered adapter keys in no particular order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	return keys
}

// Resolve reads the current ai_provider setting and returns the matching
// adapter. A missing setting or an unregistered value is a ConfigError.
func (r *Registry) Resolve(ctx context.Context) (Adapter, error) {
	value, err := r.settings.Get(ctx, SettingAIProvider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ConfigError{Key: SettingAIProvider, Reason: "setting is not defined"}
		}
		return nil, fmt.Errorf("read %s setting: %w", SettingAIProvider, err)
	}
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return nil, &domain.ConfigError{Key: SettingAIProvider, Reason: "setting is empty"}
	}
	adapter, ok := r.adapters[key]
	if !ok {
		return nil, &domain.ConfigError{Key: SettingAIProvider, Reason: fmt.Sprintf("no adapter registered for %q", key)}
	}
	return adapter, nil
}

// ResolveImage resolves the active adapter and requires image capability.
func (r *Registry) ResolveImage(ctx context.Context) (ImageGenerator, error) {
	adapter, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	gen, ok := adapter.(ImageGenerator)
	if !ok {
		return nil, &domain.ConfigError{
			Key:    SettingAIProvider,
			Reason: fmt.Sprintf("provider %q cannot generate images", adapter.Name()),
		}
	}
	return gen, nil
}

// ResolveText resolves the active adapter and requires text capability.
func (r *Registry) ResolveText(ctx context.Context) (TextGenerator, error) {
	adapter, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	gen, ok := adapter.(TextGenerator)
	if !ok {
		return nil, &domain.ConfigError{
			Key:    SettingAIProvider,
			Reason: fmt.Sprintf("provider %q cannot generate text", adapter.Name()),
		}
	}
	return gen, nil
}
