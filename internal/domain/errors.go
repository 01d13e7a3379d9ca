package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyPrompt      = errors.New("composed prompt is empty")
	ErrInvalidSelection = errors.New("selected variant index out of range")
	ErrAttemptInFlight  = errors.New("generation attempt already in flight")
)

// ConfigError indicates a missing credential or an unresolvable provider
// setting. It is fatal for the operation and raised before any network or
// persistence side effect.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Key, e.Reason)
}

// ProviderError carries the upstream status and raw body of a failed
// generative API call so a single failing variant stays diagnosable.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }
