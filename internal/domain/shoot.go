package domain

import "time"

// ApprovalStatus enumerates reviewer decisions on a generated photo.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ShootSession is one photo-shoot generation job covering a set of named
// views (e.g. "front", "detail", "lifestyle").
type ShootSession struct {
	ID           string
	Status       GenerationStatus
	Facets       []byte
	Views        []string
	ErrorMessage string
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GeneratedPhoto is one produced image for a (session, view, variant index)
// triple. Approval is mutated by reviewer action only, never by generation.
type GeneratedPhoto struct {
	ID             string
	SessionID      string
	View           string
	VariantIndex   int
	URL            string
	ApprovalStatus ApprovalStatus
	CreatedAt      time.Time
}
