package domain

import "time"

// GenerationStatus enumerates the lifecycle states of a generation record.
type GenerationStatus string

const (
	StatusDraft      GenerationStatus = "draft"
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusError      GenerationStatus = "error"
)

// Terminal reports whether no further automatic transition occurs for the
// current attempt.
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// SlideStatus enumerates per-slide outcomes inside a multi-slide expose.
type SlideStatus string

const (
	SlideStatusPending SlideStatus = "pending"
	SlideStatusReady   SlideStatus = "ready"
	SlideStatusError   SlideStatus = "error"
)

// Slide is an independently generated sub-unit of an expose. Slides succeed
// or fail on their own without deciding the fate of their siblings.
type Slide struct {
	Position          int         `json:"position"`
	Text              string      `json:"text"`
	Variations        []string    `json:"variations"`
	SelectedVariation int         `json:"selected_variation"`
	Status            SlideStatus `json:"status"`
	ErrorMessage      string      `json:"error_message,omitempty"`
}

// Expose is one generation job: a single creative asset with its produced
// variant URLs, or a deck of slides generated within one dispatch.
type Expose struct {
	ID              string
	Status          GenerationStatus
	Facets          []byte // immutable while an attempt is in flight
	HeroImageURL    string
	Variants        []string
	SelectedVariant int
	ErrorMessage    string
	Slides          []Slide
	Provider        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ExposeUpdate carries a partial merge for one expose. Nil fields are left
// untouched so the dispatcher never needs to read before writing.
type ExposeUpdate struct {
	Status          *GenerationStatus
	HeroImageURL    *string
	Variants        []string
	SelectedVariant *int
	ErrorMessage    *string
	Slides          []Slide
	Provider        *string
}
